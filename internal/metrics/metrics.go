// Package metrics records the outcome of a copy in Prometheus text format,
// for pickup by the node_exporter textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bamsammich/ubcopy/internal/stats"
)

// Metrics holds the per-run series. Each ubcopy invocation owns its own
// registry, so the file reflects exactly one run.
type Metrics struct {
	reg *prometheus.Registry

	runs            *prometheus.CounterVec
	bytesWritten    prometheus.Counter
	blocksWritten   prometheus.Counter
	tailBytes       prometheus.Gauge
	bytesHashed     prometheus.Counter
	durationSeconds prometheus.Gauge
	throughput      prometheus.Gauge
	lastSuccess     prometheus.Gauge
}

// New creates the series and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ubcopy_runs_total",
				Help: "Copy runs by outcome and copy mode",
			},
			[]string{"status", "mode"},
		),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ubcopy_bytes_written_total",
			Help: "Bytes written to the destination, tail included",
		}),
		blocksWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ubcopy_blocks_written_total",
			Help: "Full blocks written with unbuffered I/O",
		}),
		tailBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ubcopy_tail_bytes",
			Help: "Size of the final partial block written through the buffered path",
		}),
		bytesHashed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ubcopy_bytes_hashed_total",
			Help: "Bytes read back from the destination for verification",
		}),
		durationSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ubcopy_duration_seconds",
			Help: "Wall time of the run",
		}),
		throughput: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ubcopy_throughput_bytes_per_second",
			Help: "Average write throughput of the run",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ubcopy_last_success_timestamp_seconds",
			Help: "Unix time of the last run that copied or skipped",
		}),
	}
	m.reg.MustRegister(
		m.runs,
		m.bytesWritten,
		m.blocksWritten,
		m.tailBytes,
		m.bytesHashed,
		m.durationSeconds,
		m.throughput,
		m.lastSuccess,
	)
	return m
}

// Observe records one finished run. status is "succeeded", "skipped" or
// "failed"; mode is "none" when no copy was planned.
func (m *Metrics) Observe(status, mode string, snap stats.Snapshot) {
	m.runs.WithLabelValues(status, mode).Inc()
	m.bytesWritten.Add(float64(snap.BytesWritten))
	m.blocksWritten.Add(float64(snap.BlocksWritten))
	m.tailBytes.Set(float64(snap.TailBytes))
	m.bytesHashed.Add(float64(snap.BytesHashed))

	secs := snap.Elapsed.Seconds()
	m.durationSeconds.Set(secs)
	if secs > 0 {
		m.throughput.Set(float64(snap.BytesWritten) / secs)
	}
	if status != "failed" {
		m.lastSuccess.SetToCurrentTime()
	}
}

// WriteFile atomically writes all series to path in text exposition format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}

// Gatherer exposes the registry, mainly for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.reg
}
