package ui

import "github.com/bamsammich/ubcopy/internal/event"

// Event is the engine event consumed by presenters.
type Event = event.Event

// Re-export event types for convenience.
const (
	CopyStarted   = event.CopyStarted
	Progress      = event.Progress
	TailWritten   = event.TailWritten
	CopyCompleted = event.CopyCompleted
	CopyFailed    = event.CopyFailed
	FileSkipped   = event.FileSkipped
	VerifyStarted = event.VerifyStarted
	VerifyOK      = event.VerifyOK
	VerifyFailed  = event.VerifyFailed
	SourceDeleted = event.SourceDeleted
	DeleteFailed  = event.DeleteFailed
)
