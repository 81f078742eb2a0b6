package convert

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"

	"bmpedit/bitmap"
	"bmpedit/edit"
)

type CLICmd struct {
	In     string `help:"Source image (bmp, gif, jpeg, png, tiff, webp)" required:"" type:"existingfile"`
	Out    string `help:"Destination image. Relative to the source folder if not absolute." required:""`
	Format string `help:"Output format. Guessed from the destination extension when empty, bmp if that fails." enum:",bmp,png,tiff" default:""`
	Force  bool   `help:"Overwrite an existing destination" default:"false"`

	Palette string `help:"RIFF PAL file whose first palette the output is mapped onto" group:"palette"`
	Dither  bool   `help:"Apply Floyd-Steinberg dithering when mapping onto the palette" default:"false" group:"palette"`

	pal color.Palette `kong:"-"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	src, err := filepath.Abs(c.In)
	if err != nil {
		return fmt.Errorf("invalid source path %q: %w", c.In, err)
	}
	c.In = src

	if !filepath.IsAbs(c.Out) {
		c.Out = filepath.Join(filepath.Dir(src), c.Out)
	}
	if c.Format == "" {
		c.Format = formatFor(c.Out)
	}

	if c.Palette != "" {
		if c.pal, err = loadPalette(c.Palette); err != nil {
			return err
		}
	}

	return edit.CheckDestination(c.In, c.Out, c.Force)
}

func formatFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "png"
	case ".tif", ".tiff":
		return "tiff"
	}
	return "bmp"
}

func (c *CLICmd) Run() error {
	logger := slog.Default().With("file", c.In)

	imgFile, err := os.Open(c.In)
	if err != nil {
		return fmt.Errorf("could not open image %q: %w", c.In, err)
	}
	defer func() {
		if closeErr := imgFile.Close(); closeErr != nil {
			logger.Error("could not close image", "error", closeErr)
		}
	}()

	img, imgType, err := image.Decode(imgFile)
	if err != nil {
		return fmt.Errorf("could not decode image %q: %w", c.In, err)
	}
	logger.Info("decoded", "type", imgType, "bounds", img.Bounds())

	if c.pal != nil {
		img = repalette(logger.With("palette", c.Palette), img, c.pal, c.Dither)
	}

	if err = save(img, c.Format, c.Out); err != nil {
		return err
	}
	logger.Info("converted", "dest", c.Out, "format", c.Format)
	return nil
}

// save writes img to dest. Bitmaps always come out as 24-bit, through
// bitmap.Save.
func save(img image.Image, format, dest string) error {
	name := filepath.Base(dest)
	switch format {
	case "bmp":
		return bitmap.Save(dest, bitmap.FromImage(img))
	case "png":
		return bitmap.WriteFile(dest, func(w io.Writer) error {
			enc := png.Encoder{CompressionLevel: png.BestCompression}
			if err := enc.Encode(w, img); err != nil {
				return fmt.Errorf("could not encode PNG destination %q: %w", name, err)
			}
			return nil
		})
	case "tiff":
		return bitmap.WriteFile(dest, func(w io.Writer) error {
			opts := &tiff.Options{Compression: tiff.Deflate, Predictor: true}
			if err := tiff.Encode(w, img, opts); err != nil {
				return fmt.Errorf("could not encode TIFF destination %q: %w", name, err)
			}
			return nil
		})
	}
	return fmt.Errorf("unsupported output format: %s", format)
}
