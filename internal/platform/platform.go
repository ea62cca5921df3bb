package platform

import (
	"errors"
	"os"
	"unsafe"
)

// DefaultSectorSize is used when the filesystem block size cannot be probed.
const DefaultSectorSize = 4096

const (
	minSectorSize = 512
	maxSectorSize = 64 * 1024
)

// ErrDirectUnsupported is returned by OpenDirect on platforms that have no
// page-cache bypass.
var ErrDirectUnsupported = errors.New("unbuffered I/O not supported on this platform")

// IOMode selects how a file is opened for block transfer.
type IOMode int

const (
	Buffered IOMode = iota
	Direct          // O_DIRECT on Linux, F_NOCACHE on macOS
)

func (m IOMode) String() string {
	switch m {
	case Buffered:
		return "buffered"
	case Direct:
		return "direct"
	default:
		return "unknown"
	}
}

// Open opens path in the given mode. Direct mode fails with
// ErrDirectUnsupported where the platform cannot bypass the page cache.
func Open(path string, flag int, perm os.FileMode, mode IOMode) (*os.File, error) {
	if mode == Direct {
		return OpenDirect(path, flag, perm)
	}
	return os.OpenFile(path, flag, perm)
}

// AlignedBlock allocates a size-byte slice whose first byte sits on an
// align-byte boundary. Unbuffered I/O rejects misaligned user memory.
func AlignedBlock(size, align int) []byte {
	if size <= 0 {
		return nil
	}
	if align <= 0 {
		align = DefaultSectorSize
	}
	buf := make([]byte, size+align)
	off := 0
	if rem := int(uintptr(unsafe.Pointer(&buf[0])) % uintptr(align)); rem != 0 {
		off = align - rem
	}
	return buf[off : off+size : off+size]
}

// IsAligned reports whether b starts on an align-byte boundary.
func IsAligned(b []byte, align int) bool {
	if len(b) == 0 || align <= 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&b[0]))%uintptr(align) == 0
}

// normalizeSector maps a probed block size onto a usable sector size. Values
// that are not a power of two in [512, 64K] are replaced by the default.
func normalizeSector(n int64) int {
	if n < minSectorSize || n > maxSectorSize || n&(n-1) != 0 {
		return DefaultSectorSize
	}
	return int(n)
}
