//go:build darwin

package engine

import (
	"os"
	"syscall"
	"time"
)

// accessTime returns the access time recorded in info, or its mtime when
// the platform stat is unavailable.
func accessTime(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Atimespec.Sec, st.Atimespec.Nsec)
	}
	return info.ModTime()
}
