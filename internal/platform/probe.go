package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ProbeDirect checks that both the source file and the destination
// directory accept unbuffered opens. Some filesystems (tmpfs on older
// kernels, many FUSE mounts) reject O_DIRECT with EINVAL at open time.
func ProbeDirect(srcPath, dstDir string) error {
	if !DirectSupported {
		return ErrDirectUnsupported
	}

	src, err := OpenDirect(srcPath, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("direct open %s: %w", srcPath, err)
	}
	src.Close()

	probe := filepath.Join(dstDir, fmt.Sprintf(".ubcopy-probe-%s", uuid.New().String()[:8]))
	dst, err := OpenDirect(probe, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("direct open %s: %w", dstDir, err)
	}
	dst.Close()
	_ = os.Remove(probe)
	return nil
}
