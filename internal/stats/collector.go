package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// Collector tracks transfer statistics using lock-free atomic counters. The
// reader and writer goroutines update disjoint counters; presenters only read.
type Collector struct {
	bytesRead     atomic.Int64
	bytesWritten  atomic.Int64
	bytesTotal    atomic.Int64
	blocksRead    atomic.Int64
	blocksWritten atomic.Int64
	tailBytes     atomic.Int64
	bytesHashed   atomic.Int64
	startTime     time.Time

	// Ring buffer, written only by the presenter's Tick().
	mu         sync.Mutex
	throughput [ringSize]int64 // bytes written delta per tick
	ringIdx    int
	ringCount  int // how many samples have been written (capped at ringSize)
	lastBytes  int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// SetTotal records the size of the file being copied.
func (c *Collector) SetTotal(bytes int64) { c.bytesTotal.Store(bytes) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	BytesRead     int64
	BytesWritten  int64
	BytesTotal    int64
	BlocksRead    int64
	BlocksWritten int64
	TailBytes     int64
	BytesHashed   int64
	Elapsed       time.Duration
}

// AddBlockRead records one block handed to the relay.
func (c *Collector) AddBlockRead(n int64) {
	c.blocksRead.Add(1)
	c.bytesRead.Add(n)
}

// AddBlockWritten records one aligned block flushed by the writer.
func (c *Collector) AddBlockWritten(n int64) {
	c.blocksWritten.Add(1)
	c.bytesWritten.Add(n)
}

// AddTail records the buffered tail write.
func (c *Collector) AddTail(n int64) {
	c.tailBytes.Add(n)
	c.bytesWritten.Add(n)
}

// AddBytesWritten records bytes written outside the block protocol (the
// synchronous fallback path).
func (c *Collector) AddBytesWritten(n int64) { c.bytesWritten.Add(n) }

// AddBytesRead records bytes read outside the block protocol.
func (c *Collector) AddBytesRead(n int64) { c.bytesRead.Add(n) }

// AddBytesHashed records bytes consumed by the destination hash pass.
func (c *Collector) AddBytesHashed(n int64) { c.bytesHashed.Add(n) }

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		BytesRead:     c.bytesRead.Load(),
		BytesWritten:  c.bytesWritten.Load(),
		BytesTotal:    c.bytesTotal.Load(),
		BlocksRead:    c.blocksRead.Load(),
		BlocksWritten: c.blocksWritten.Load(),
		TailBytes:     c.tailBytes.Load(),
		BytesHashed:   c.bytesHashed.Load(),
		Elapsed:       c.Elapsed(),
	}
}

// Percent returns written/total in [0, 100]. An empty file is complete.
func (s Snapshot) Percent() float64 {
	if s.BytesTotal <= 0 {
		return 100
	}
	pct := float64(s.BytesWritten) / float64(s.BytesTotal) * 100
	return min(pct, 100)
}

// Tick snapshots the written-bytes delta into the ring buffer. Called 1/sec by the presenter.
func (c *Collector) Tick() {
	current := c.bytesWritten.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = current - c.lastBytes
	c.lastBytes = current
	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average bytes/sec over the last n seconds of samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(seconds, c.ringCount)
	if count <= 0 {
		return 0
	}
	var sum int64
	for i := range count {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += c.throughput[idx]
	}
	return float64(sum) / float64(count)
}

// History returns up to n per-tick throughput samples, oldest first.
func (c *Collector) History(n int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := min(n, c.ringCount)
	if count <= 0 {
		return nil
	}
	data := make([]float64, count)
	for i := range count {
		idx := (c.ringIdx - count + i + ringSize) % ringSize
		data[i] = float64(c.throughput[idx])
	}
	return data
}

// ETA estimates remaining time based on rolling speed and remaining bytes.
func (c *Collector) ETA() time.Duration {
	speed := c.RollingSpeed(10)
	if speed <= 0 {
		return 0
	}
	remaining := c.bytesTotal.Load() - c.bytesWritten.Load()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining)/speed) * time.Second
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"read=%d written=%d total=%d blocks_read=%d blocks_written=%d tail=%d",
		s.BytesRead, s.BytesWritten, s.BytesTotal,
		s.BlocksRead, s.BlocksWritten, s.TailBytes,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
