package engine

import (
	"context"

	"github.com/bamsammich/ubcopy/internal/platform"
)

// relay is the single block handed from the reader to the writer. Exactly
// one token circulates between empty and full; whoever holds it owns buf.
// A token in empty means the relay is clean, a token in full (carrying the
// payload length) means it is dirty. Both sides block on their channel and
// on ctx, so a failure on either side wakes the other.
type relay struct {
	buf   []byte
	empty chan struct{}
	full  chan int
}

func newRelay(size, align int) *relay {
	r := &relay{
		buf:   platform.AlignedBlock(size, align),
		empty: make(chan struct{}, 1),
		full:  make(chan int, 1),
	}
	r.empty <- struct{}{}
	return r
}

// put waits for the relay to be clean, copies block into it and marks it
// dirty.
func (r *relay) put(ctx context.Context, block []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.empty:
	}
	n := copy(r.buf, block)
	r.full <- n
	return nil
}

// take waits for the relay to be dirty, copies its payload into dst and
// marks it clean. It returns the payload length.
func (r *relay) take(ctx context.Context, dst []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case n := <-r.full:
		n = copy(dst, r.buf[:n])
		r.empty <- struct{}{}
		return n, nil
	}
}
