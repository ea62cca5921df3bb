//go:build linux || darwin

package platform

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// Pread issues a single positional read into buf, retrying on EINTR. A short
// count with a nil error means EOF was reached.
//
//nolint:gosec // G115: fd values are small non-negative integers
func Pread(f *os.File, buf []byte, off int64) (int, error) {
	for {
		n, err := unix.Pread(int(f.Fd()), buf, off)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if n < 0 {
			n = 0
		}
		return n, err
	}
}

// Pwrite writes all of buf at off. Direct-mode files only accept whole
// sectors, so a partial write is resumed at the following offset.
//
//nolint:gosec // G115: fd values are small non-negative integers
func Pwrite(f *os.File, buf []byte, off int64) (int, error) {
	written := 0
	for written < len(buf) {
		n, err := unix.Pwrite(int(f.Fd()), buf[written:], off+int64(written))
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return written, err
		}
		if n == 0 {
			return written, unix.EIO
		}
		written += n
	}
	return written, nil
}
