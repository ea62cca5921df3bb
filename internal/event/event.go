package event

import "time"

// Type identifies the kind of event.
type Type int

const (
	CopyStarted Type = iota + 1
	Progress
	TailWritten
	CopyCompleted
	CopyFailed
	FileSkipped
	VerifyStarted
	VerifyOK
	VerifyFailed
	SourceDeleted
	DeleteFailed
)

var typeNames = [...]string{
	CopyStarted:   "CopyStarted",
	Progress:      "Progress",
	TailWritten:   "TailWritten",
	CopyCompleted: "CopyCompleted",
	CopyFailed:    "CopyFailed",
	FileSkipped:   "FileSkipped",
	VerifyStarted: "VerifyStarted",
	VerifyOK:      "VerifyOK",
	VerifyFailed:  "VerifyFailed",
	SourceDeleted: "SourceDeleted",
	DeleteFailed:  "DeleteFailed",
}

func (t Type) String() string {
	if t > 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// Event represents a single progress or outcome event from the engine.
type Event struct {
	Type      Type
	Timestamp time.Time
	Path      string  // destination path (source path for delete events)
	Size      int64   // bytes written so far (Progress), file size otherwise
	Total     int64   // file size
	Percent   float64 // 0-100, Progress only
	Mode      string  // "overlapped" or "sync" (CopyStarted)
	SrcDigest string  // hex, Verify*
	DstDigest string  // hex, Verify*
	Error     error
}

// Emit sends e on ch without blocking. A nil channel or a full buffer drops
// the event; progress consumers must tolerate gaps. Use Send for events
// that decide the outcome of a job.
func Emit(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}

// Send delivers e on ch, waiting for buffer space if necessary. A nil
// channel discards the event. The consumer must keep draining ch until the
// producer is done with it.
func Send(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	ch <- e
}
