package convert

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"

	"golang.org/x/image/draw"

	"bmpedit/palette"
)

// loadPalette reads the first palette of a RIFF PAL file.
func loadPalette(path string) (color.Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open palette %q: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("could not close palette", "name", path, "error", closeErr)
		}
	}()

	pals, err := palette.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("could not read palette %q: %w", path, err)
	}
	if len(pals) == 0 || len(pals[0]) == 0 {
		return nil, fmt.Errorf("palette %q has no colors", path)
	}
	return pals[0], nil
}

func repalette(logger *slog.Logger, img image.Image, pal color.Palette, dither bool) image.Image {
	logger.Info("applying palette", "colors", len(pal), "dither", dither)
	sr := img.Bounds()
	dr := image.Rect(0, 0, sr.Dx(), sr.Dy())
	dest := image.NewPaletted(dr, pal)

	if dither {
		draw.FloydSteinberg.Draw(dest, dr, img, sr.Min)
	} else {
		draw.Draw(dest, dr, img, sr.Min, draw.Src)
	}
	return dest
}
