package ui

import (
	"fmt"

	"github.com/bamsammich/ubcopy/internal/stats"
)

// completionSummary builds the final summary line.
// Format: done ✓  size 2.1 GiB  avg 641 MB/s  time 3s  mode overlapped  verified
func completionSummary(snap stats.Snapshot, o outcome) string {
	if o.skipped {
		return "skipped –  destination exists"
	}

	avgSpeed := 0.0
	if snap.Elapsed.Seconds() > 0 {
		avgSpeed = float64(snap.BytesWritten) / snap.Elapsed.Seconds()
	}

	word, icon := "done", "✓"
	if o.failed || o.verifyFailed {
		word, icon = "failed", "✗"
	}

	base := fmt.Sprintf("%s %s  size %s  avg %s  time %s",
		word, icon,
		FormatBytes(snap.BytesWritten),
		FormatRate(avgSpeed),
		FormatDuration(snap.Elapsed),
	)
	if o.mode != "" {
		base += "  mode " + o.mode
	}
	switch {
	case o.verifyFailed:
		base += "  checksum mismatch"
	case o.verified:
		base += "  verified"
	}
	if o.moved {
		base += "  source removed"
	}
	return base
}
