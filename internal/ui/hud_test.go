package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/ubcopy/internal/stats"
)

func newTestHUD(out *bytes.Buffer) *hudPresenter {
	collector := stats.NewCollector()
	collector.SetTotal(10240)
	return &hudPresenter{w: out, stats: collector, width: 80}
}

func runHUD(t *testing.T, p *hudPresenter, evs ...Event) {
	t.Helper()
	events := make(chan Event, len(evs))
	for _, ev := range evs {
		events <- ev
	}
	close(events)
	require.NoError(t, p.Run(events))
}

func TestHudPresenterCopyCompleted(t *testing.T) {
	var out bytes.Buffer
	p := newTestHUD(&out)

	runHUD(t, p,
		Event{Type: CopyStarted, Path: "test/file.txt", Total: 10240, Mode: "overlapped"},
		Event{Type: CopyCompleted, Path: "test/file.txt", Size: 10240},
	)

	assert.Contains(t, out.String(), "file.txt")
	assert.Contains(t, out.String(), "✓")
	assert.Contains(t, out.String(), "overlapped")
}

func TestHudPresenterDrawsPercent(t *testing.T) {
	var out bytes.Buffer
	p := newTestHUD(&out)
	p.stats.AddBlockWritten(5120)

	p.handleEvent(Event{Type: CopyStarted, Path: "f", Total: 10240})
	p.drawHUD()

	assert.Contains(t, out.String(), " 50%")
	assert.Contains(t, out.String(), "▪▪▪▪▪▪▪▪▪▪□□□□□□□□□□")
	assert.True(t, p.hudDrawn)
}

func TestHudPresenterNoProgress(t *testing.T) {
	var out bytes.Buffer
	p := newTestHUD(&out)
	p.noProgress = true

	p.handleEvent(Event{Type: CopyStarted, Path: "f", Total: 10240})
	p.handleEvent(Event{Type: Progress, Size: 5120, Total: 10240, Percent: 50})

	assert.False(t, p.hudDrawn)
	assert.NotContains(t, out.String(), "%")
}

func TestHudClearHUDSequence(t *testing.T) {
	var out bytes.Buffer
	p := newTestHUD(&out)

	p.drawHUD()
	out.Reset()
	p.clearHUD()

	assert.Equal(t, "\033[2A\033[J", out.String())
	assert.False(t, p.hudDrawn)

	// Clearing twice is a no-op.
	out.Reset()
	p.clearHUD()
	assert.Empty(t, out.String())
}

func TestHudAlwaysRedrawsAfterFeedLine(t *testing.T) {
	var out bytes.Buffer
	p := newTestHUD(&out)

	p.handleEvent(Event{Type: CopyStarted, Path: "f", Total: 10240})
	out.Reset()
	p.handleEvent(Event{Type: TailWritten, Path: "f", Size: 10})
	p.handleEvent(Event{Type: VerifyStarted})

	s := out.String()
	idx := strings.Index(s, "verifying checksums...")
	require.GreaterOrEqual(t, idx, 0)
	// HUD drawn again after the feed line.
	assert.Contains(t, s[idx:], "blocks")
}

func TestHudClearsOnCompletion(t *testing.T) {
	var out bytes.Buffer
	p := newTestHUD(&out)

	runHUD(t, p,
		Event{Type: CopyStarted, Path: "f", Total: 10240},
		Event{Type: CopyCompleted, Path: "f", Size: 10240},
	)
	assert.False(t, p.hudDrawn)
	assert.False(t, p.copying)
}

func TestHudPresenterVerifyFailed(t *testing.T) {
	var out bytes.Buffer
	p := newTestHUD(&out)

	runHUD(t, p, Event{Type: VerifyFailed, Path: "f", SrcDigest: "abc123", DstDigest: "def456"})

	assert.Contains(t, out.String(), "CHECKSUM MISMATCH")
	assert.Contains(t, out.String(), "abc123")
	assert.Contains(t, out.String(), "def456")
	assert.Contains(t, p.Summary(), "failed ✗")
}

func TestHudPresenterDeleteFailed(t *testing.T) {
	var out bytes.Buffer
	p := newTestHUD(&out)

	runHUD(t, p, Event{Type: DeleteFailed, Path: "src", Error: assert.AnError})
	assert.Contains(t, out.String(), "could not remove source")
	assert.Contains(t, out.String(), assert.AnError.Error())
}

func TestHudPresenterSummary(t *testing.T) {
	var out bytes.Buffer
	p := newTestHUD(&out)
	p.stats.AddBlockWritten(10240)
	p.handleEvent(Event{Type: CopyStarted, Mode: "sync"})
	p.handleEvent(Event{Type: SourceDeleted, Path: "src"})

	s := p.Summary()
	assert.Contains(t, s, "done ✓")
	assert.Contains(t, s, "size 10.0 KiB")
	assert.Contains(t, s, "mode sync")
	assert.Contains(t, s, "source removed")
}

func TestTruncPath(t *testing.T) {
	assert.Equal(t, "short", truncPath("short", 10))
	assert.Equal(t, "...ry/long/path.txt", truncPath("/a/very/long/path.txt", 19))
	assert.Equal(t, "abc", truncPath("abcdef", 3))
}

func TestNewPresenter(t *testing.T) {
	var out bytes.Buffer
	collector := stats.NewCollector()

	assert.IsType(t, &quietPresenter{}, NewPresenter(Config{Quiet: true, IsTTY: true, Stats: collector}))
	assert.IsType(t, &plainPresenter{}, NewPresenter(Config{Writer: &out, ErrWriter: &out, Stats: collector}))

	hud, ok := NewPresenter(Config{ErrWriter: &out, IsTTY: true, Stats: collector}).(*hudPresenter)
	require.True(t, ok)
	assert.Equal(t, 80, hud.width)
}

func TestQuietPresenter(t *testing.T) {
	p := &quietPresenter{stats: stats.NewCollector()}
	events := make(chan Event, 2)
	events <- Event{Type: CopyStarted}
	events <- Event{Type: CopyCompleted}
	close(events)

	require.NoError(t, p.Run(events))
	assert.Empty(t, p.Summary())
}
