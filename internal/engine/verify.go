package engine

import (
	"bytes"
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/bamsammich/ubcopy/internal/checksum"
)

type hashFunc func(ctx context.Context, path string, alg checksum.Algorithm, bufSize int) ([]byte, error)

// verifyDestination hashes dst on a worker goroutine and compares the digest
// against srcDigest. It returns the destination digest, and a
// *MismatchError if the digests differ.
func verifyDestination(
	ctx context.Context,
	dst string,
	alg checksum.Algorithm,
	srcDigest []byte,
	hashFile hashFunc,
) ([]byte, error) {
	var dstDigest []byte
	var g errgroup.Group
	g.Go(func() error {
		d, err := hashFile(ctx, dst, alg, checksum.DefaultBufferSize)
		dstDigest = d
		return err
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newError(ErrDestinationRead, "verify", dst, err)
	}

	if !bytes.Equal(srcDigest, dstDigest) {
		return dstDigest, &MismatchError{
			Path:      dst,
			Algorithm: string(alg),
			SrcDigest: checksum.Hex(srcDigest),
			DstDigest: checksum.Hex(dstDigest),
		}
	}
	return dstDigest, nil
}
