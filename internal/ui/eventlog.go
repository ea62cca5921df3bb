package ui

import (
	"context"
	"log/slog"
)

// TeeEvents forwards every event from in to the returned channel and writes
// it to logger as a structured record under the "ubcopy" group. Progress
// records are logged at debug level, lifecycle events at info. The returned
// channel is closed when in is closed.
func TeeEvents(in <-chan Event, logger *slog.Logger) <-chan Event {
	out := make(chan Event, cap(in))
	logger = logger.WithGroup("ubcopy")
	go func() {
		defer close(out)
		for ev := range in {
			LogEvent(logger, ev)
			out <- ev
		}
	}()
	return out
}

// LogEvent writes ev to logger as one record.
func LogEvent(logger *slog.Logger, ev Event) {
	level := slog.LevelInfo
	switch ev.Type {
	case Progress, TailWritten:
		level = slog.LevelDebug
	case CopyFailed, VerifyFailed, DeleteFailed:
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("type", ev.Type.String()),
		slog.String("path", ev.Path),
	}
	if ev.Size != 0 {
		attrs = append(attrs, slog.Int64("size", ev.Size))
	}
	if ev.Total != 0 {
		attrs = append(attrs, slog.Int64("total", ev.Total))
	}
	if ev.Type == Progress {
		attrs = append(attrs, slog.Float64("percent", ev.Percent))
	}
	if ev.Mode != "" {
		attrs = append(attrs, slog.String("mode", ev.Mode))
	}
	if ev.SrcDigest != "" {
		attrs = append(attrs, slog.String("src_digest", ev.SrcDigest))
	}
	if ev.DstDigest != "" {
		attrs = append(attrs, slog.String("dst_digest", ev.DstDigest))
	}
	if ev.Error != nil {
		attrs = append(attrs, slog.String("error", ev.Error.Error()))
	}
	logger.LogAttrs(context.Background(), level, "event", attrs...)
}
