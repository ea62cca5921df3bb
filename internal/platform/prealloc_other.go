//go:build !linux

package platform

import "os"

// Preallocate is a no-op where fallocate is unavailable; the destination is
// still extended with ftruncate.
func Preallocate(*os.File, int64) {}
