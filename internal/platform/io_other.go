//go:build !linux && !darwin

package platform

import (
	"errors"
	"io"
	"os"
)

// Pread reads into buf at off. A short count with a nil error means EOF was
// reached.
func Pread(f *os.File, buf []byte, off int64) (int, error) {
	n, err := f.ReadAt(buf, off)
	if errors.Is(err, io.EOF) {
		return n, nil
	}
	return n, err
}

// Pwrite writes all of buf at off.
func Pwrite(f *os.File, buf []byte, off int64) (int, error) {
	return f.WriteAt(buf, off)
}
