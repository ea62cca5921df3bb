package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBenchmark(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dstDir := filepath.Join(dir, "dst")
	src := filepath.Join(dir, "testdata.bin")
	require.NoError(t, os.WriteFile(src, make([]byte, 1<<20), 0644))

	result, err := RunBenchmark(context.Background(), src, dstDir)
	require.NoError(t, err)

	assert.Greater(t, result.ReadBytesPerSec, float64(0))
	assert.Greater(t, result.WriteBytesPerSec, float64(0))
	assert.Contains(t, []int{4, DefaultBufferMB, MaxBufferMB}, result.SuggestedBufferMB)

	// Scratch file is removed.
	entries, err := os.ReadDir(dstDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunBenchmark_EmptySource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(src, nil, 0644))

	_, err := RunBenchmark(context.Background(), src, filepath.Join(dir, "dst"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is empty")
}

func TestRunBenchmark_MissingSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := RunBenchmark(context.Background(), filepath.Join(dir, "nope"), dir)
	require.Error(t, err)
}

func TestSuggestBufferMB(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		readBPS  float64
		writeBPS float64
		want     int
	}{
		{"NVMe", 3e9, 2.5e9, MaxBufferMB},
		{"SSD", 500e6, 400e6, DefaultBufferMB},
		{"HDD", 100e6, 80e6, 4},
		{"slow writer bounds fast reader", 3e9, 100e6, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, suggestBufferMB(tc.readBPS, tc.writeBPS))
		})
	}
}

func TestFormatBenchmark(t *testing.T) {
	t.Parallel()

	result := BenchmarkResult{
		ReadBytesPerSec:   2.1e9,
		WriteBytesPerSec:  1.8e9,
		SuggestedBufferMB: 32,
	}
	s := FormatBenchmark(result)
	assert.Contains(t, s, "(buffered)")
	assert.Contains(t, s, "read 2.1 GB/s")
	assert.Contains(t, s, "write 1.8 GB/s")
	assert.Contains(t, s, "suggested buffer 32 MB")
}
