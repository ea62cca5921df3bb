//go:build !linux && !darwin

package engine

import (
	"os"
	"time"
)

func accessTime(info os.FileInfo) time.Time { return info.ModTime() }

func setFileTimes(path string, atime, mtime time.Time) error {
	return os.Chtimes(path, atime, mtime)
}
