package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/bamsammich/ubcopy/internal/platform"
)

// BenchmarkResult holds throughput measurements.
type BenchmarkResult struct {
	IO                platform.IOMode
	ReadBytesPerSec   float64
	WriteBytesPerSec  float64
	SuggestedBufferMB int
}

const (
	benchSize  = 64 * 1024 * 1024 // 64 MB
	benchBlock = 1 << 20
)

// RunBenchmark measures read throughput of srcPath and write throughput of
// a scratch file in dstDir, using unbuffered I/O when both ends accept it.
func RunBenchmark(ctx context.Context, srcPath, dstDir string) (BenchmarkResult, error) {
	var result BenchmarkResult

	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return result, fmt.Errorf("write benchmark: %w", err)
	}

	result.IO = platform.Buffered
	if platform.ProbeDirect(srcPath, dstDir) == nil {
		result.IO = platform.Direct
	}
	align := max(platform.SectorSize(srcPath), platform.SectorSize(dstDir))

	readSpeed, err := benchRead(ctx, srcPath, result.IO, align)
	if err != nil {
		return result, fmt.Errorf("read benchmark: %w", err)
	}
	result.ReadBytesPerSec = readSpeed

	writeSpeed, err := benchWrite(ctx, dstDir, result.IO, align)
	if err != nil {
		return result, fmt.Errorf("write benchmark: %w", err)
	}
	result.WriteBytesPerSec = writeSpeed

	result.SuggestedBufferMB = suggestBufferMB(readSpeed, writeSpeed)
	return result, nil
}

// benchRead reads up to benchSize bytes of path in aligned blocks.
func benchRead(ctx context.Context, path string, mode platform.IOMode, align int) (float64, error) {
	f, err := platform.Open(path, os.O_RDONLY, 0, mode)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	buf := platform.AlignedBlock(benchBlock, align)
	var total int64
	start := time.Now()
	for total < benchSize {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		n, readErr := platform.Pread(f, buf, total)
		if readErr != nil {
			return 0, readErr
		}
		total += int64(n)
		if n < len(buf) {
			break
		}
	}
	if total == 0 {
		return 0, fmt.Errorf("%s is empty", path)
	}
	return throughput(total, time.Since(start)), nil
}

// benchWrite writes benchSize bytes of zeros to a scratch file in dstDir,
// fsyncs, and removes it.
func benchWrite(ctx context.Context, dstDir string, mode platform.IOMode, align int) (float64, error) {
	path := filepath.Join(dstDir, ".ubcopy-bench-"+uuid.NewString()[:8])
	f, err := platform.Open(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600, mode)
	if err != nil {
		return 0, err
	}
	defer os.Remove(path)
	defer f.Close()

	buf := platform.AlignedBlock(benchBlock, align)
	var total int64
	start := time.Now()
	for total < benchSize {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		n, writeErr := platform.Pwrite(f, buf, total)
		total += int64(n)
		if writeErr != nil {
			return 0, writeErr
		}
	}
	if err := f.Sync(); err != nil {
		return 0, err
	}
	return throughput(total, time.Since(start)), nil
}

func throughput(n int64, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		elapsed = time.Microsecond
	}
	return float64(n) / elapsed.Seconds()
}

// suggestBufferMB returns a buffer size based on measured throughput.
func suggestBufferMB(readBPS, writeBPS float64) int {
	// Use the slower of read/write as the bottleneck indicator.
	bottleneck := min(readBPS, writeBPS)

	switch {
	case bottleneck >= 2e9: // >= 2 GB/s → NVMe
		return MaxBufferMB
	case bottleneck >= 200e6: // >= 200 MB/s → SSD
		return DefaultBufferMB
	default: // HDD
		return 4
	}
}

// FormatBenchmark formats a BenchmarkResult for display.
func FormatBenchmark(r BenchmarkResult) string {
	return fmt.Sprintf("benchmark (%s): read %s/s  write %s/s  suggested buffer %d MB",
		r.IO, formatBytes(r.ReadBytesPerSec), formatBytes(r.WriteBytesPerSec), r.SuggestedBufferMB)
}

func formatBytes(b float64) string {
	switch {
	case b >= 1e9:
		return fmt.Sprintf("%.1f GB", b/1e9)
	case b >= 1e6:
		return fmt.Sprintf("%.0f MB", b/1e6)
	case b >= 1e3:
		return fmt.Sprintf("%.0f KB", b/1e3)
	default:
		return fmt.Sprintf("%.0f B", b)
	}
}
