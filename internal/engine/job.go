package engine

import (
	"github.com/bamsammich/ubcopy/internal/checksum"
	"github.com/bamsammich/ubcopy/internal/event"
	"github.com/bamsammich/ubcopy/internal/stats"
)

// Invocation defaults.
const (
	DefaultBufferMB = 16
	MaxBufferMB     = 32
)

// Job describes one copy. It is built once per invocation and never mutated.
type Job struct {
	Src       string
	Dst       string
	Overwrite bool
	Move      bool
	Verify    bool
	BufferMB  int
	Progress  bool

	PreserveTimes bool // copy atime and mtime onto the destination

	Hash          checksum.Algorithm // "" selects checksum.Default
	SyncThreshold int64              // 0 means one buffer
	BWLimit       int64              // bytes/sec, 0 means unlimited

	// Events receives progress and lifecycle events. Progress is dropped when
	// the buffer is full; lifecycle events wait for room, so the consumer
	// must drain Events until Run returns.
	Events chan<- event.Event
	Stats  *stats.Collector
}

// NewJob returns a Job with the invocation defaults applied.
func NewJob(src, dst string) Job {
	return Job{
		Src:       src,
		Dst:       dst,
		Overwrite: true,
		BufferMB:  DefaultBufferMB,
	}
}

// Status is the outcome of a job.
type Status int

const (
	StatusFailed Status = iota
	StatusSucceeded
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusFailed:
		return "failed"
	case StatusSucceeded:
		return "succeeded"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Result is the outcome of Run.
type Result struct {
	Status    Status
	Mode      Mode
	Src       string
	Dst       string // resolved destination path
	Size      int64
	SrcDigest string // hex, set when verifying
	DstDigest string // hex, set when verifying
	Stats     stats.Snapshot
	Err       error
	DeleteErr error // non-fatal; set when Move could not remove the source
}
