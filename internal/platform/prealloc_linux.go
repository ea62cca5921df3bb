//go:build linux

package platform

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// Preallocate asks the filesystem to reserve size bytes for f so the direct
// writes land in allocated extents. Filesystems without fallocate support
// are left to allocate on write.
func Preallocate(f *os.File, size int64) {
	if size <= 0 {
		return
	}
	fd := int(f.Fd()) //nolint:gosec // G115: descriptors fit in int
	for {
		err := unix.Fallocate(fd, 0, 0, size)
		if !errors.Is(err, unix.EINTR) {
			return
		}
	}
}
