package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/bamsammich/ubcopy/internal/platform"
)

const syncBufferSize = 1 << 20 // 1 MB

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, syncBufferSize)
		return &b
	},
}

// copySync copies src to dst with buffered I/O on the calling goroutine. It
// handles small files and filesystems that refuse unbuffered opens.
func (t *transfer) copySync(ctx context.Context) error {
	src, err := t.openSource(t.src, platform.Buffered)
	if err != nil {
		return newError(ErrSourceRead, "open", t.src, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(t.dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, t.perm)
	if err != nil {
		return newError(ErrDestinationWrite, "create", t.dst, err)
	}

	var w io.Writer = dst
	if t.limiter != nil {
		w = &rateLimitedWriter{w: dst, limiter: t.limiter, ctx: ctx}
	}

	bufp := bufPool.Get().(*[]byte) //nolint:errcheck,forcetypeassert // pool always holds *[]byte
	defer bufPool.Put(bufp)
	buf := *bufp

	var off int64
	for off < t.size {
		if err := ctx.Err(); err != nil {
			dst.Close()
			return err
		}

		want := int(min(int64(len(buf)), t.size-off))
		n, err := src.ReadBlock(buf[:want], off)
		if err != nil {
			dst.Close()
			return newError(ErrSourceRead, "read", t.src, fmt.Errorf("offset %d: %w", off, err))
		}
		if n == 0 {
			dst.Close()
			return newError(ErrSourceRead, "read", t.src,
				fmt.Errorf("unexpected end of file at offset %d of %d", off, t.size))
		}

		if t.hasher != nil {
			_ = t.hasher.Feed(buf[:n]) //nolint:errcheck // finalized only after the loop
		}
		t.stats.AddBytesRead(int64(n))

		if _, err := w.Write(buf[:n]); err != nil {
			dst.Close()
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return newError(ErrDestinationWrite, "write", t.dst, fmt.Errorf("offset %d: %w", off, err))
		}
		off += int64(n)
		t.stats.AddBytesWritten(int64(n))
		t.emitProgress(off)
	}
	t.bytesRead = off
	t.bytesWritten = off

	if err := dst.Sync(); err != nil {
		dst.Close()
		return newError(ErrDestinationWrite, "sync", t.dst, err)
	}
	if err := dst.Close(); err != nil {
		return newError(ErrDestinationWrite, "close", t.dst, err)
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
