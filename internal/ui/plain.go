package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/ubcopy/internal/stats"
)

const progressStep = 10 // percent between plain progress lines

// plainPresenter writes outcome lines to stdout and a progress line to
// stderr each time the copy crosses another 10% step.
type plainPresenter struct {
	w          io.Writer
	errW       io.Writer
	stats      *stats.Collector
	noProgress bool

	outcome  outcome
	lastStep int
}

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.stats.Tick()
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	p.outcome.observe(ev)

	switch ev.Type {
	case CopyStarted:
		p.lastStep = 0
		fmt.Fprintf(p.w, "copying %s  %s  (%s)\n", ev.Path, FormatBytes(ev.Total), ev.Mode)
	case Progress:
		p.printProgress(ev)
	case CopyCompleted:
		fmt.Fprintf(p.w, "%s  %s\n", ev.Path, FormatBytes(ev.Size))
	case CopyFailed:
		fmt.Fprintf(p.w, "%s  %s\n", ev.Path, errString(ev.Error))
	case FileSkipped:
		fmt.Fprintf(p.w, "%s  skipped\n", ev.Path)
	case VerifyStarted:
		fmt.Fprintln(p.w, "verifying...")
	case VerifyOK:
		fmt.Fprintf(p.w, "checksum OK: %s\n", ev.SrcDigest)
	case VerifyFailed:
		if ev.DstDigest == "" {
			fmt.Fprintf(p.w, "VERIFY FAILED: %s: %s\n", ev.Path, errString(ev.Error))
			return
		}
		fmt.Fprintf(p.w, "MISMATCH: %s source %s destination %s\n", ev.Path, ev.SrcDigest, ev.DstDigest)
	case SourceDeleted:
		fmt.Fprintf(p.w, "removed: %s\n", ev.Path)
	case DeleteFailed:
		fmt.Fprintf(p.w, "warning: could not remove %s: %s\n", ev.Path, errString(ev.Error))
	}
}

// printProgress prints one line per progressStep crossed.
func (p *plainPresenter) printProgress(ev Event) {
	if p.noProgress {
		return
	}
	step := int(ev.Percent) / progressStep * progressStep
	if step <= p.lastStep {
		return
	}
	p.lastStep = step
	fmt.Fprintf(p.errW, "progress: %d%% %s/%s %s eta %s\n",
		step,
		FormatBytes(ev.Size), FormatBytes(ev.Total),
		FormatRate(p.stats.RollingSpeed(10)),
		FormatETA(p.stats.ETA()),
	)
}

func (p *plainPresenter) Summary() string {
	return completionSummary(p.stats.Snapshot(), p.outcome)
}
