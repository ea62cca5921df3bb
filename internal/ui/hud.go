package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/ubcopy/internal/stats"
)

// hudPresenter prints lifecycle lines and a 2-line HUD that redraws the
// copy percentage in place.
type hudPresenter struct {
	w          io.Writer
	stats      *stats.Collector
	noProgress bool
	width      int

	// Internal state.
	outcome      outcome
	copying      bool
	hudDrawn     bool
	hudLineCount int
	lastHUDDraw  time.Time
}

const (
	sparklineWidth   = 20
	progressBarWidth = 20
	hudMinInterval   = 50 * time.Millisecond // don't redraw faster than this
)

func (p *hudPresenter) Run(events <-chan Event) error {
	// Fire first tick quickly to seed the ring buffer with initial speed data,
	// then switch to 1s interval.
	secTicker := time.NewTicker(250 * time.Millisecond)
	defer secTicker.Stop()
	firstTickDone := false

	// Redraw ticker for when no events are flowing (e.g., slow devices).
	redrawTicker := time.NewTicker(100 * time.Millisecond)
	defer redrawTicker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clearHUD()
				return nil
			}
			p.handleEvent(ev)

		case <-redrawTicker.C:
			if p.copying {
				p.drawHUD()
			}

		case <-secTicker.C:
			p.stats.Tick()
			if !firstTickDone {
				firstTickDone = true
				secTicker.Reset(1 * time.Second)
			}
		}
	}
}

func (p *hudPresenter) handleEvent(ev Event) {
	p.outcome.observe(ev)

	switch ev.Type {
	case CopyStarted:
		p.copying = !p.noProgress
		p.feed(fmt.Sprintf("%s  %s  %s  %s",
			styleDim.Render("→"), p.fitPath(ev.Path),
			FormatBytes(ev.Total), styleDim.Render(ev.Mode)))

	case Progress:
		if p.copying {
			p.maybeDrawHUD()
		}

	case CopyCompleted:
		p.copying = false
		p.feed(fmt.Sprintf("%s  %s  %s",
			styleIconDone.Render("✓"), p.fitPath(ev.Path), FormatBytes(ev.Size)))

	case CopyFailed:
		p.copying = false
		p.feed(fmt.Sprintf("%s  %s  %s",
			styleIconFailed.Render("✗"), p.fitPath(ev.Path), errString(ev.Error)))

	case FileSkipped:
		p.feed(fmt.Sprintf("%s  %s  %s",
			styleIconSkipped.Render("–"), p.fitPath(ev.Path), styleDim.Render("skipped (destination exists)")))

	case VerifyStarted:
		p.feed(styleDim.Render("verifying checksums..."))

	case VerifyOK:
		p.feed(fmt.Sprintf("%s  checksum OK  %s",
			styleIconDone.Render("✓"), styleDim.Render(ev.SrcDigest)))

	case VerifyFailed:
		if ev.DstDigest == "" {
			p.feed(fmt.Sprintf("%s  VERIFY FAILED  %s", styleIconFailed.Render("✗"), errString(ev.Error)))
			return
		}
		p.feed(fmt.Sprintf("%s  CHECKSUM MISMATCH\n   source       %s\n   destination  %s",
			styleIconFailed.Render("✗"), ev.SrcDigest, ev.DstDigest))

	case SourceDeleted:
		p.feed(fmt.Sprintf("%s  removed %s", styleDim.Render("×"), p.fitPath(ev.Path)))

	case DeleteFailed:
		p.feed(fmt.Sprintf("%s  could not remove source: %s",
			styleWarning.Render("!"), errString(ev.Error)))
	}
}

// feed prints a feed line above the HUD and redraws the HUD below it.
func (p *hudPresenter) feed(line string) {
	p.clearHUD()
	fmt.Fprintln(p.w, line)
	if p.copying {
		p.drawHUD()
	}
}

// maybeDrawHUD redraws the HUD if enough time has passed since the last draw.
func (p *hudPresenter) maybeDrawHUD() {
	if time.Since(p.lastHUDDraw) < hudMinInterval {
		return
	}
	p.drawHUD()
}

func (p *hudPresenter) drawHUD() {
	snap := p.stats.Snapshot()
	p.clearHUD()

	speed := p.stats.RollingSpeed(10)
	spark := Sparkline(p.stats.History(sparklineWidth), sparklineWidth)

	// Line 1: throughput sparkline + speed + byte totals.
	fmt.Fprintf(p.w, "       %s   %s   %s / %s\n",
		styleDim.Render(spark), styleRate.Render(FormatRate(speed)),
		FormatBytes(snap.BytesWritten), FormatBytes(snap.BytesTotal))

	// Line 2: percentage + progress bar (▪/□) + blocks + eta.
	pct := snap.Percent()
	fmt.Fprintf(p.w, " %s  %s   %s blocks   eta %s\n",
		stylePercent.Render(FormatPercent(pct)),
		styleProgressFill.Render(ProgressBar(pct/100, progressBarWidth)),
		FormatCount(snap.BlocksWritten),
		FormatETA(p.stats.ETA()))

	p.hudDrawn = true
	p.hudLineCount = 2
	p.lastHUDDraw = time.Now()
}

func (p *hudPresenter) clearHUD() {
	if !p.hudDrawn {
		return
	}
	// Move cursor up N lines and clear to end of screen.
	fmt.Fprintf(p.w, "\033[%dA\033[J", p.hudLineCount)
	p.hudDrawn = false
}

func (p *hudPresenter) Summary() string {
	return completionSummary(p.stats.Snapshot(), p.outcome)
}

// fitPath shortens path so a feed line stays on one terminal row.
func (p *hudPresenter) fitPath(path string) string {
	return truncPath(path, max(p.width-30, 20))
}

// truncPath shortens a path to fit within maxLen characters.
func truncPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[:maxLen]
	}
	return "..." + path[len(path)-maxLen+3:]
}

func errString(err error) string {
	if err == nil {
		return "error"
	}
	return err.Error()
}
