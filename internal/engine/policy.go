package engine

import (
	"fmt"

	"github.com/bamsammich/ubcopy/internal/platform"
)

const mib = 1 << 20

// Mode selects the copy path.
type Mode int

const (
	ModeNone       Mode = iota // job ended before a plan was made
	ModeSync                   // single goroutine, buffered I/O
	ModeOverlapped             // reader/writer goroutines, unbuffered I/O
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeSync:
		return "sync"
	case ModeOverlapped:
		return "overlapped"
	default:
		return "unknown"
	}
}

// Plan is the policy decision for one job.
type Plan struct {
	Mode       Mode
	IO         platform.IOMode
	BufferSize int // bytes, a multiple of Align
	Align      int // sector size offsets, lengths and memory are aligned to
	Reason     string
}

// Policy decides buffer geometry and whether the overlapped unbuffered
// engine applies.
type Policy struct {
	// SyncThreshold is the file size below which the synchronous copy is
	// used. Zero means one buffer.
	SyncThreshold int64

	probe      func(src, dstDir string) error
	sectorSize func(path string) int
	overlapIO  platform.IOMode
}

// NewPolicy returns a Policy backed by the running platform.
func NewPolicy(syncThreshold int64) Policy {
	return Policy{
		SyncThreshold: syncThreshold,
		probe:         platform.ProbeDirect,
		sectorSize:    platform.SectorSize,
		overlapIO:     platform.Direct,
	}
}

// BufferBytes converts a buffer size in MiB to bytes, clamping to
// MaxBufferMB.
func BufferBytes(mb int) (int, error) {
	if mb <= 0 {
		return 0, fmt.Errorf("%w: buffer size must be positive, got %d MB", ErrConfig, mb)
	}
	return min(mb, MaxBufferMB) * mib, nil
}

// Plan returns the copy plan for a size-byte source at src being written
// into dstDir.
func (p Policy) Plan(src string, size int64, bufferMB int, dstDir string) (Plan, error) {
	bufSize, err := BufferBytes(bufferMB)
	if err != nil {
		return Plan{}, err
	}

	// Both ends must accept the same alignment; sector sizes are powers of
	// two so the larger one satisfies both.
	align := max(p.sectorSize(src), p.sectorSize(dstDir))
	if align <= 0 || bufSize%align != 0 {
		return Plan{}, fmt.Errorf("%w: buffer size %d is not a multiple of sector size %d",
			ErrConfig, bufSize, align)
	}

	plan := Plan{BufferSize: bufSize, Align: align}

	threshold := p.SyncThreshold
	if threshold <= 0 {
		threshold = int64(bufSize)
	}
	if size < threshold {
		plan.Mode = ModeSync
		plan.IO = platform.Buffered
		plan.Reason = fmt.Sprintf("size %d below sync threshold %d", size, threshold)
		return plan, nil
	}

	if err := p.probe(src, dstDir); err != nil {
		plan.Mode = ModeSync
		plan.IO = platform.Buffered
		plan.Reason = fmt.Sprintf("unbuffered I/O unavailable: %v", err)
		return plan, nil
	}

	plan.Mode = ModeOverlapped
	plan.IO = p.overlapIO
	plan.Reason = fmt.Sprintf("%d blocks of %d bytes", blocks(size, bufSize), bufSize)
	return plan, nil
}

// blocks returns the number of buffer-size blocks needed for size bytes.
func blocks(size int64, bufSize int) int64 {
	bs := int64(bufSize)
	return (size + bs - 1) / bs
}

// roundUp rounds size up to a multiple of bufSize.
func roundUp(size int64, bufSize int) int64 {
	return blocks(size, bufSize) * int64(bufSize)
}
