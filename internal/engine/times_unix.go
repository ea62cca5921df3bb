//go:build linux || darwin

package engine

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// setFileTimes sets the access and modification times of path.
func setFileTimes(path string, atime, mtime time.Time) error {
	times := []unix.Timespec{
		unix.NsecToTimespec(atime.UnixNano()),
		unix.NsecToTimespec(mtime.UnixNano()),
	}
	if err := unix.UtimesNanoAt(unix.AT_FDCWD, path, times, 0); err != nil {
		return fmt.Errorf("utimensat: %w", err)
	}
	return nil
}
