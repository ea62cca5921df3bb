//go:build !linux && !darwin

package platform

import "os"

// DirectSupported reports whether this build can open files with the page
// cache bypassed.
const DirectSupported = false

// OpenDirect always fails on platforms without a page-cache bypass.
func OpenDirect(_ string, _ int, _ os.FileMode) (*os.File, error) {
	return nil, ErrDirectUnsupported
}

// SectorSize returns DefaultSectorSize.
func SectorSize(_ string) int {
	return DefaultSectorSize
}
