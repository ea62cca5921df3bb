package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	const blocks = 1000

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range blocks {
			c.AddBlockRead(4096)
		}
	}()
	go func() {
		defer wg.Done()
		for range blocks {
			c.AddBlockWritten(4096)
		}
	}()
	wg.Wait()
	c.AddTail(100)

	s := c.Snapshot()
	assert.Equal(t, int64(blocks), s.BlocksRead)
	assert.Equal(t, int64(blocks), s.BlocksWritten)
	assert.Equal(t, int64(blocks*4096), s.BytesRead)
	assert.Equal(t, int64(blocks*4096+100), s.BytesWritten)
	assert.Equal(t, int64(100), s.TailBytes)
}

func TestSnapshotString(t *testing.T) {
	s := Snapshot{
		BytesRead:     8192,
		BytesWritten:  8192,
		BytesTotal:    8192,
		BlocksRead:    2,
		BlocksWritten: 1,
		TailBytes:     4096,
	}
	expected := "read=8192 written=8192 total=8192 blocks_read=2 blocks_written=1 tail=4096"
	assert.Equal(t, expected, s.String())
}

func TestSnapshotPercent(t *testing.T) {
	assert.InDelta(t, 100.0, Snapshot{}.Percent(), 0.001)
	assert.InDelta(t, 50.0, Snapshot{BytesWritten: 512, BytesTotal: 1024}.Percent(), 0.001)
	// Padding writes may briefly overshoot; never report more than 100.
	assert.InDelta(t, 100.0, Snapshot{BytesWritten: 2048, BytesTotal: 1024}.Percent(), 0.001)
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{1073741824, "1.0 GiB"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, FormatBytes(tt.input))
		})
	}
}

func TestNewCollector(t *testing.T) {
	c := NewCollector()
	assert.False(t, c.startTime.IsZero())
	assert.InDelta(t, 0, c.Elapsed().Seconds(), 1)
}

func TestSetTotal(t *testing.T) {
	c := NewCollector()
	c.SetTotal(1024 * 1024)
	assert.Equal(t, int64(1024*1024), c.Snapshot().BytesTotal)
}

func TestTickAndRollingSpeed(t *testing.T) {
	c := NewCollector()

	// Simulate 5 seconds of 1000 bytes/sec.
	for range 5 {
		c.AddBytesWritten(1000)
		c.Tick()
	}

	assert.InDelta(t, 1000.0, c.RollingSpeed(5), 0.01)
}

func TestRollingSpeedPartialWindow(t *testing.T) {
	c := NewCollector()

	c.AddBytesWritten(500)
	c.Tick()
	c.AddBytesWritten(500)
	c.Tick()

	// Ask for 10 but only have 2.
	assert.InDelta(t, 500.0, c.RollingSpeed(10), 0.01)
}

func TestRollingSpeedNoSamples(t *testing.T) {
	c := NewCollector()
	assert.Equal(t, 0.0, c.RollingSpeed(5))
}

func TestRingWraps(t *testing.T) {
	c := NewCollector()
	for range ringSize + 10 {
		c.AddBytesWritten(10)
		c.Tick()
	}
	assert.InDelta(t, 10.0, c.RollingSpeed(ringSize), 0.01)
}

func TestETA(t *testing.T) {
	c := NewCollector()
	assert.Equal(t, time.Duration(0), c.ETA())

	c.SetTotal(10000)
	c.AddBytesWritten(1000)
	c.Tick()
	assert.Equal(t, 9*time.Second, c.ETA())

	c.AddBytesWritten(9000)
	assert.Equal(t, time.Duration(0), c.ETA())
}

func TestHistory(t *testing.T) {
	c := NewCollector()
	assert.Nil(t, c.History(5))

	for _, n := range []int64{100, 200, 300} {
		c.AddBytesWritten(n)
		c.Tick()
	}
	assert.Equal(t, []float64{200, 300}, c.History(2))
	assert.Equal(t, []float64{100, 200, 300}, c.History(10))
}
