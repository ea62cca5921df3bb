// Package checksum implements the streaming digests used to verify a copy.
package checksum

import (
	"context"
	"crypto/md5" //nolint:gosec // G501: md5 is offered for digest compatibility, not security
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Algorithm names a supported digest.
type Algorithm string

const (
	BLAKE3 Algorithm = "blake3"
	XXH64  Algorithm = "xxh64"
	MD5    Algorithm = "md5"
)

// Default is the algorithm used when none is configured.
const Default = BLAKE3

// DefaultBufferSize is the read size for HashFile when the caller passes 0.
const DefaultBufferSize = 1 << 20

var (
	// ErrUnknownAlgorithm is returned for an unrecognised algorithm name.
	ErrUnknownAlgorithm = errors.New("unknown checksum algorithm")
	// ErrFinalized is returned when a Hasher is used after Finalize.
	ErrFinalized = errors.New("hasher already finalized")
)

// Algorithms lists the supported algorithms, default first.
func Algorithms() []Algorithm {
	return []Algorithm{BLAKE3, XXH64, MD5}
}

// ParseAlgorithm resolves a case-insensitive name. An empty name selects
// Default.
func ParseAlgorithm(s string) (Algorithm, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Default, nil
	}
	for _, a := range Algorithms() {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

func newHash(alg Algorithm) (hash.Hash, error) {
	switch alg {
	case BLAKE3:
		return blake3.New(), nil
	case XXH64:
		return xxhash.New(), nil
	case MD5:
		return md5.New(), nil //nolint:gosec // G401: see import
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
}

// Hasher is an incremental digest. Blocks must be fed in file order with no
// gaps or overlaps; Finalize may be called once, after the last block.
// A Hasher is owned by a single goroutine.
type Hasher struct {
	alg       Algorithm
	h         hash.Hash
	fed       int64
	finalized bool
}

// New returns a Hasher for alg.
func New(alg Algorithm) (*Hasher, error) {
	h, err := newHash(alg)
	if err != nil {
		return nil, err
	}
	return &Hasher{alg: alg, h: h}, nil
}

// Feed incorporates block into the running digest.
func (h *Hasher) Feed(block []byte) error {
	if h.finalized {
		return ErrFinalized
	}
	// hash.Hash.Write never returns an error.
	_, _ = h.h.Write(block)
	h.fed += int64(len(block))
	return nil
}

// Finalize returns the digest of everything fed so far.
func (h *Hasher) Finalize() ([]byte, error) {
	if h.finalized {
		return nil, ErrFinalized
	}
	h.finalized = true
	return h.h.Sum(nil), nil
}

// Fed returns the number of bytes incorporated so far.
func (h *Hasher) Fed() int64 { return h.fed }

// Algorithm returns the digest algorithm.
func (h *Hasher) Algorithm() Algorithm { return h.alg }

// HashFile computes the digest of the file at path with a full sequential
// read. bufSize <= 0 selects DefaultBufferSize.
func HashFile(ctx context.Context, path string, alg Algorithm, bufSize int) ([]byte, error) {
	h, err := New(alg)
	if err != nil {
		return nil, err
	}
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, bufSize)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := f.Read(buf)
		if n > 0 {
			_ = h.Feed(buf[:n]) //nolint:errcheck // not finalized yet
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("hash %s: %w", path, err)
		}
	}
	return h.Finalize()
}

// Hex returns the lowercase hex encoding of a digest.
func Hex(digest []byte) string {
	return hex.EncodeToString(digest)
}
