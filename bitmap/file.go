package bitmap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open bitmap %q: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("could not close bitmap", "name", path, "error", closeErr)
		}
	}()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode %q: %w", path, err)
	}
	return img, nil
}

// Save encodes img into path through WriteFile.
func Save(path string, img *Image) error {
	if err := img.Validate(); err != nil {
		return fmt.Errorf("could not save %q: %w", path, err)
	}
	return WriteFile(path, func(w io.Writer) error {
		if err := Encode(w, img); err != nil {
			return fmt.Errorf("could not encode %q: %w", path, err)
		}
		return nil
	})
}

// WriteFile hands write a temporary file next to path and renames it into
// place once write and the flush succeed, so an existing file at path is
// left intact when anything fails.
func WriteFile(path string, write func(w io.Writer) error) (err error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	outFile, err := os.CreateTemp(dir, name+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary destination for %q: %w", path, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = fmt.Errorf("could not flush temporary destination %q: %w", outFile.Name(), defErr)
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", outFile.Name(), defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), path); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", path, defErr)
			}
		}
		if err != nil {
			_ = os.Remove(outFile.Name())
		}
	}()

	if err = write(outFile); err != nil {
		return err
	}
	// CreateTemp opens with 0600
	if err = outFile.Chmod(0o644); err != nil {
		return fmt.Errorf("could not set mode of %q: %w", outFile.Name(), err)
	}

	canRename = true
	return nil
}
