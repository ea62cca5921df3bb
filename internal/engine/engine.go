package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bamsammich/ubcopy/internal/checksum"
	"github.com/bamsammich/ubcopy/internal/event"
	"github.com/bamsammich/ubcopy/internal/platform"
	"github.com/bamsammich/ubcopy/internal/stats"
)

// Run executes job, blocking until the copy, the optional verification and
// the optional source removal are done.
func Run(ctx context.Context, job Job) Result {
	return newRunner(job).run(ctx)
}

// runner carries the filesystem hooks Run goes through. Tests replace them
// to inject read failures, digest mismatches and delete failures.
type runner struct {
	job        Job
	policy     Policy
	openSource func(path string, mode platform.IOMode) (blockSource, error)
	hashFile   hashFunc
	remove     func(path string) error
}

func newRunner(job Job) *runner {
	return &runner{
		job:        job,
		policy:     NewPolicy(job.SyncThreshold),
		openSource: openSourceFile,
		hashFile:   checksum.HashFile,
		remove:     os.Remove,
	}
}

//nolint:revive // cognitive-complexity: linear phase sequence with early returns
func (r *runner) run(ctx context.Context) Result {
	job := r.job
	collector := job.Stats
	if collector == nil {
		collector = stats.NewCollector()
	}
	log := slog.With("job", uuid.NewString()[:8])

	res := Result{Src: job.Src, Dst: job.Dst}
	fail := func(err error) Result {
		res.Status = StatusFailed
		res.Err = err
		res.Stats = collector.Snapshot()
		event.Send(job.Events, event.Event{Type: event.CopyFailed, Path: res.Dst, Error: err})
		log.Debug("copy failed", "src", job.Src, "dst", res.Dst, "error", err)
		return res
	}

	alg, err := checksum.ParseAlgorithm(string(job.Hash))
	if err != nil {
		return fail(newError(ErrConfig, "hash", "", err))
	}
	if _, err := BufferBytes(job.BufferMB); err != nil {
		return fail(err)
	}
	if job.SyncThreshold < 0 || job.BWLimit < 0 {
		return fail(newError(ErrConfig, "limits", "", errors.New("sync threshold and bandwidth limit must not be negative")))
	}

	srcInfo, err := os.Stat(job.Src)
	if err != nil {
		return fail(newError(ErrSourceRead, "stat", job.Src, err))
	}
	if !srcInfo.Mode().IsRegular() {
		return fail(newError(ErrSourceRead, "stat", job.Src, fmt.Errorf("not a regular file (%s)", srcInfo.Mode().Type())))
	}

	// If dst is an existing directory, copy into it.
	dst := job.Dst
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		dst = filepath.Join(dst, filepath.Base(job.Src))
	}
	res.Dst = dst

	if dstInfo, err := os.Stat(dst); err == nil {
		if !job.Overwrite {
			res.Status = StatusSkipped
			res.Stats = collector.Snapshot()
			event.Send(job.Events, event.Event{Type: event.FileSkipped, Path: dst, Error: ErrDestinationExists})
			log.Info("destination exists, skipping", "dst", dst)
			return res
		}
		if os.SameFile(srcInfo, dstInfo) {
			return fail(newError(ErrConfig, "resolve", dst, errors.New("source and destination are the same file")))
		}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fail(newError(ErrDirectoryCreate, "mkdir", filepath.Dir(dst), err))
	}

	size := srcInfo.Size()
	res.Size = size
	collector.SetTotal(size)

	plan, err := r.policy.Plan(job.Src, size, job.BufferMB, filepath.Dir(dst))
	if err != nil {
		return fail(err)
	}
	res.Mode = plan.Mode
	log.Debug("copy plan",
		"src", job.Src, "dst", dst, "size", size,
		"mode", plan.Mode, "io", plan.IO,
		"buffer", plan.BufferSize, "align", plan.Align,
		"reason", plan.Reason)

	t := &transfer{
		src:        job.Src,
		dst:        dst,
		size:       size,
		perm:       srcInfo.Mode().Perm(),
		plan:       plan,
		events:     job.Events,
		progress:   job.Progress,
		stats:      collector,
		openSource: r.openSource,
	}
	if job.Verify {
		if t.hasher, err = checksum.New(alg); err != nil {
			return fail(newError(ErrConfig, "hash", "", err))
		}
	}
	if job.BWLimit > 0 {
		t.limiter = NewBWLimiter(job.BWLimit)
	}

	event.Send(job.Events, event.Event{
		Type:  event.CopyStarted,
		Path:  dst,
		Size:  size,
		Total: size,
		Mode:  plan.Mode.String(),
	})

	if plan.Mode == ModeOverlapped {
		err = t.copyOverlapped(ctx)
	} else {
		err = t.copySync(ctx)
	}
	if err != nil {
		return fail(err)
	}

	event.Send(job.Events, event.Event{Type: event.CopyCompleted, Path: dst, Size: size, Total: size})

	if job.Verify {
		event.Send(job.Events, event.Event{Type: event.VerifyStarted, Path: dst, Total: size})
		res.SrcDigest = checksum.Hex(t.srcDigest)

		dstDigest, err := verifyDestination(ctx, dst, alg, t.srcDigest, r.hashFile)
		if dstDigest != nil {
			collector.AddBytesHashed(size)
			res.DstDigest = checksum.Hex(dstDigest)
		}
		if err != nil {
			res.Status = StatusFailed
			res.Err = err
			res.Stats = collector.Snapshot()
			event.Send(job.Events, event.Event{
				Type:      event.VerifyFailed,
				Path:      dst,
				SrcDigest: res.SrcDigest,
				DstDigest: res.DstDigest,
				Error:     err,
			})
			log.Debug("verification failed", "dst", dst, "error", err)
			return res
		}
		event.Send(job.Events, event.Event{
			Type:      event.VerifyOK,
			Path:      dst,
			SrcDigest: res.SrcDigest,
			DstDigest: res.DstDigest,
		})
	}

	if job.PreserveTimes {
		if err := setFileTimes(dst, accessTime(srcInfo), srcInfo.ModTime()); err != nil {
			return fail(newError(ErrDestinationWrite, "chtimes", dst, err))
		}
	}

	if job.Move {
		if err := r.remove(job.Src); err != nil {
			res.DeleteErr = newError(ErrSourceDelete, "remove", job.Src, err)
			log.Warn("copy succeeded but source was not removed", "src", job.Src, "error", err)
			event.Send(job.Events, event.Event{Type: event.DeleteFailed, Path: job.Src, Error: res.DeleteErr})
		} else {
			event.Send(job.Events, event.Event{Type: event.SourceDeleted, Path: job.Src})
		}
	}

	res.Status = StatusSucceeded
	res.Stats = collector.Snapshot()
	return res
}
