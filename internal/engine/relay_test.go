package engine

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelay_HandsOffInOrder(t *testing.T) {
	const (
		size   = 4096
		rounds = 200
	)
	r := newRelay(size, 512)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		src := make([]byte, size)
		for i := range rounds {
			// Every byte of block i carries i; a torn read would mix values.
			for j := range src {
				src[j] = byte(i)
			}
			if err := r.put(ctx, src); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	dst := make([]byte, size)
	for i := range rounds {
		n, err := r.take(ctx, dst)
		require.NoError(t, err)
		require.Equal(t, size, n)
		require.Equal(t, bytes.Repeat([]byte{byte(i)}, size), dst, "round %d", i)
	}
	require.NoError(t, <-done)
}

func TestRelay_ShortPayload(t *testing.T) {
	r := newRelay(4096, 512)
	ctx := context.Background()

	require.NoError(t, r.put(ctx, []byte("tail")))
	dst := make([]byte, 4096)
	n, err := r.take(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, "tail", string(dst[:n]))
}

func TestRelay_PutBlocksWhileDirty(t *testing.T) {
	r := newRelay(16, 512)
	ctx := context.Background()
	require.NoError(t, r.put(ctx, []byte("first")))

	second := make(chan error, 1)
	go func() { second <- r.put(ctx, []byte("second")) }()

	select {
	case <-second:
		t.Fatal("put returned while relay was dirty")
	case <-time.After(50 * time.Millisecond):
	}

	dst := make([]byte, 16)
	n, err := r.take(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, "first", string(dst[:n]))
	require.NoError(t, <-second)

	n, err = r.take(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, "second", string(dst[:n]))
}

func TestRelay_CancelWakesBlockedPut(t *testing.T) {
	r := newRelay(16, 512)
	require.NoError(t, r.put(context.Background(), []byte("x")))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- r.put(ctx, []byte("y")) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("blocked put was not woken by cancellation")
	}
}

func TestRelay_CancelWakesBlockedTake(t *testing.T) {
	r := newRelay(16, 512)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := r.take(ctx, make([]byte, 16))
		errc <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("blocked take was not woken by cancellation")
	}
}
