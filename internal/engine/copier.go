package engine

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/bamsammich/ubcopy/internal/checksum"
	"github.com/bamsammich/ubcopy/internal/event"
	"github.com/bamsammich/ubcopy/internal/platform"
	"github.com/bamsammich/ubcopy/internal/stats"
)

// blockSource reads whole blocks by offset. A short count with a nil error
// means end of file.
type blockSource interface {
	ReadBlock(buf []byte, off int64) (int, error)
	Close() error
}

type fileSource struct{ f *os.File }

func (s fileSource) ReadBlock(buf []byte, off int64) (int, error) {
	return platform.Pread(s.f, buf, off)
}

func (s fileSource) Close() error { return s.f.Close() }

func openSourceFile(path string, mode platform.IOMode) (blockSource, error) {
	f, err := platform.Open(path, os.O_RDONLY, 0, mode)
	if err != nil {
		return nil, err
	}
	return fileSource{f: f}, nil
}

// transfer is the state of one copy. The reader goroutine owns bytesRead,
// srcDigest and hasher; the writer goroutine owns bytesWritten and tail.
// Both are read only after the goroutines have joined.
type transfer struct {
	src, dst string
	size     int64
	perm     os.FileMode
	plan     Plan

	hasher   *checksum.Hasher // nil unless verifying
	limiter  *rate.Limiter    // nil means unlimited
	events   chan<- event.Event
	progress bool
	stats    *stats.Collector

	openSource func(path string, mode platform.IOMode) (blockSource, error)

	bytesRead    int64
	bytesWritten int64
	tail         []byte
	srcDigest    []byte
}

// copyOverlapped runs the reader and writer concurrently with a single relay
// block between them, then writes the tail through a buffered handle and
// truncates the destination to the exact source size.
func (t *transfer) copyOverlapped(ctx context.Context) error {
	r := newRelay(t.plan.BufferSize, t.plan.Align)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return t.readLoop(gctx, r) })
	g.Go(func() error { return t.writeLoop(gctx, r) })
	if err := g.Wait(); err != nil {
		return err
	}

	if err := t.checkCounts(); err != nil {
		return err
	}
	return t.finish()
}

// checkCounts confirms that the joined reader and writer accounted for
// exactly size bytes between them.
func (t *transfer) checkCounts() error {
	if t.bytesRead != t.size || t.bytesWritten+int64(len(t.tail)) != t.size {
		return newError(ErrTransferIntegrity, "copy", t.dst, fmt.Errorf(
			"read %d bytes, wrote %d plus %d tail bytes, expected %d",
			t.bytesRead, t.bytesWritten, len(t.tail), t.size))
	}
	return nil
}

// readLoop fills read-buf one block at a time, feeds the hash and hands the
// block to the writer through the relay. Every block but the last is exactly
// BufferSize bytes.
func (t *transfer) readLoop(ctx context.Context, r *relay) error {
	src, err := t.openSource(t.src, t.plan.IO)
	if err != nil {
		return newError(ErrSourceRead, "open", t.src, err)
	}
	defer src.Close()

	block := platform.AlignedBlock(t.plan.BufferSize, t.plan.Align)
	bs := int64(t.plan.BufferSize)

	for off := int64(0); off < t.size; off += bs {
		want := int(min(bs, t.size-off))
		n, err := readBlock(src, block, off, want, t.plan.IO == platform.Direct)
		if err != nil {
			return newError(ErrSourceRead, "read", t.src, fmt.Errorf("offset %d: %w", off, err))
		}
		if n < want {
			return newError(ErrSourceRead, "read", t.src,
				fmt.Errorf("short read at offset %d: got %d of %d bytes", off, n, want))
		}

		payload := block[:want]
		if t.hasher != nil {
			_ = t.hasher.Feed(payload) //nolint:errcheck // finalized only after the loop
		}
		if err := r.put(ctx, payload); err != nil {
			return err
		}
		t.bytesRead += int64(want)
		t.stats.AddBlockRead(int64(want))
	}

	if t.hasher != nil {
		digest, err := t.hasher.Finalize()
		if err != nil {
			return err
		}
		t.srcDigest = digest
	}
	return nil
}

// readBlock reads until want bytes are in buf or the source is exhausted.
// The first read always requests the whole of buf so unbuffered sources see
// an aligned length even for the final block. A direct source is read once:
// its short count marks end of file, and a follow-up read at buf[got:] would
// be misaligned.
func readBlock(src blockSource, buf []byte, off int64, want int, direct bool) (int, error) {
	got := 0
	for got < want {
		n, err := src.ReadBlock(buf[got:], off+int64(got))
		if err != nil {
			return got, err
		}
		if n == 0 {
			break
		}
		got += n
		if direct {
			break
		}
	}
	return got, nil
}

// writeLoop pre-extends the destination, then drains the relay into
// write-buf and flushes every full block with one aligned write. A short
// payload is the tail; it is kept for the buffered phase and never written
// through the unbuffered handle.
func (t *transfer) writeLoop(ctx context.Context, r *relay) error {
	if err := t.extendDestination(); err != nil {
		return err
	}

	dst, err := platform.Open(t.dst, os.O_WRONLY, 0, t.plan.IO)
	if err != nil {
		return newError(ErrDestinationWrite, "open", t.dst, err)
	}

	block := platform.AlignedBlock(t.plan.BufferSize, t.plan.Align)
	var written int64
	for written < t.size {
		n, err := r.take(ctx, block)
		if err != nil {
			dst.Close()
			return err
		}
		if n < t.plan.BufferSize {
			t.tail = block[:n]
			break
		}

		if err := throttle(ctx, t.limiter, n); err != nil {
			dst.Close()
			return err
		}
		if _, err := platform.Pwrite(dst, block, written); err != nil {
			dst.Close()
			return newError(ErrDestinationWrite, "write", t.dst, fmt.Errorf("offset %d: %w", written, err))
		}
		written += int64(n)
		t.stats.AddBlockWritten(int64(n))
		t.emitProgress(written)
	}
	t.bytesWritten = written

	if err := dst.Close(); err != nil {
		return newError(ErrDestinationWrite, "close", t.dst, err)
	}
	return nil
}

// extendDestination creates or truncates the destination and sizes it to
// whole blocks so every unbuffered write lands inside the file.
func (t *transfer) extendDestination() error {
	f, err := os.OpenFile(t.dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, t.perm)
	if err != nil {
		return newError(ErrDestinationWrite, "create", t.dst, err)
	}
	padded := roundUp(t.size, t.plan.BufferSize)
	if err := f.Truncate(padded); err != nil {
		f.Close()
		return newError(ErrDestinationWrite, "extend", t.dst, err)
	}
	platform.Preallocate(f, padded)
	if err := f.Close(); err != nil {
		return newError(ErrDestinationWrite, "create", t.dst, err)
	}
	return nil
}

// finish reopens the destination buffered, writes the tail at its offset
// and truncates away the block padding.
func (t *transfer) finish() error {
	f, err := os.OpenFile(t.dst, os.O_WRONLY, 0)
	if err != nil {
		return newError(ErrDestinationWrite, "open", t.dst, err)
	}

	if n := len(t.tail); n > 0 {
		if _, err := f.WriteAt(t.tail, t.size-int64(n)); err != nil {
			f.Close()
			return newError(ErrDestinationWrite, "write tail", t.dst, err)
		}
		t.stats.AddTail(int64(n))
		event.Emit(t.events, event.Event{
			Type:  event.TailWritten,
			Path:  t.dst,
			Size:  int64(n),
			Total: t.size,
		})
		t.emitProgress(t.size)
	}

	if err := f.Truncate(t.size); err != nil {
		f.Close()
		return newError(ErrDestinationWrite, "truncate", t.dst, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return newError(ErrDestinationWrite, "sync", t.dst, err)
	}
	if err := f.Close(); err != nil {
		return newError(ErrDestinationWrite, "close", t.dst, err)
	}
	return nil
}

func (t *transfer) emitProgress(written int64) {
	if !t.progress {
		return
	}
	event.Emit(t.events, event.Event{
		Type:    event.Progress,
		Path:    t.dst,
		Size:    written,
		Total:   t.size,
		Percent: percent(written, t.size),
	})
}

func percent(done, total int64) float64 {
	if total <= 0 {
		return 100
	}
	return float64(done) * 100 / float64(total)
}
