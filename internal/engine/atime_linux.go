//go:build linux

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
		return time.Unix(int64(st.Atim.Sec), int64(st.Atim.Nsec)) //nolint:unconvert // field widths vary by arch
	}
	return info.ModTime()
}
