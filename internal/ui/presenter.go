package ui

import (
	"io"

	"github.com/bamsammich/ubcopy/internal/stats"
)

// Presenter consumes events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan Event) error
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer     io.Writer // outcome lines
	ErrWriter  io.Writer // progress; the HUD renders here
	Stats      *stats.Collector
	IsTTY      bool
	Quiet      bool
	NoProgress bool
	Width      int // terminal columns, 0 means 80
}

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{stats: cfg.Stats}
	}
	if !cfg.IsTTY {
		return &plainPresenter{
			w:          cfg.Writer,
			errW:       cfg.ErrWriter,
			stats:      cfg.Stats,
			noProgress: cfg.NoProgress,
		}
	}
	width := cfg.Width
	if width <= 0 {
		width = 80
	}
	return &hudPresenter{
		w:          cfg.ErrWriter, // HUD renders to stderr (the TTY)
		stats:      cfg.Stats,
		noProgress: cfg.NoProgress,
		width:      width,
	}
}

// outcome accumulates what the event stream reported about the job.
type outcome struct {
	mode         string
	skipped      bool
	failed       bool
	verified     bool
	verifyFailed bool
	moved        bool
}

func (o *outcome) observe(ev Event) {
	switch ev.Type {
	case CopyStarted:
		o.mode = ev.Mode
	case FileSkipped:
		o.skipped = true
	case CopyFailed:
		o.failed = true
	case VerifyOK:
		o.verified = true
	case VerifyFailed:
		o.verifyFailed = true
	case SourceDeleted:
		o.moved = true
	}
}
