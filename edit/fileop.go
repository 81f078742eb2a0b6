package edit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var ErrSameFile = errors.New("destination is the source image")

// CheckDestination refuses to write over the source image, and over any
// other existing file unless overwrite is set.
func CheckDestination(src, dest string, overwrite bool) error {
	srcAbs, err := filepath.Abs(src)
	if err != nil {
		return fmt.Errorf("invalid source path %q: %w", src, err)
	}
	destAbs, err := filepath.Abs(dest)
	if err != nil {
		return fmt.Errorf("invalid destination path %q: %w", dest, err)
	}
	if srcAbs == destAbs {
		return fmt.Errorf("%w: %q", ErrSameFile, dest)
	}

	destFileInfo, err := os.Stat(destAbs)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot stat destination file %q: %w", dest, err)
		}
		return nil
	}
	if !destFileInfo.Mode().IsRegular() {
		return fmt.Errorf("cannot write over non-regular file %q: %s", dest, destFileInfo.Mode().String())
	}
	if srcFileInfo, err := os.Stat(srcAbs); err == nil && os.SameFile(srcFileInfo, destFileInfo) {
		return fmt.Errorf("%w: %q", ErrSameFile, dest)
	}
	if !overwrite {
		return fmt.Errorf("destination file already exists: %q", destFileInfo.Name())
	}
	return nil
}
