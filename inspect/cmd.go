// Package inspect reports the header fields of a bitmap and can print a small
// truecolor preview of it in the terminal.
package inspect

import (
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"golang.org/x/image/draw"

	"bmpedit/bitmap"
)

type CLICmd struct {
	File    string `arg:"" help:"Bitmap to inspect" type:"existingfile"`
	Preview bool   `help:"Print the picture with truecolor terminal blocks" default:"false"`
	Columns int    `help:"Widest preview, in pixels. Larger images are scaled down." default:"48"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if c.Preview && c.Columns < 1 {
		return fmt.Errorf("invalid preview width: %d", c.Columns)
	}
	return nil
}

func (c *CLICmd) Run(kctx *kong.Context) error {
	return c.write(kctx.Stdout)
}

func (c *CLICmd) write(w io.Writer) error {
	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("could not open bitmap %q: %w", c.File, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("could not close bitmap", "name", c.File, "error", closeErr)
		}
	}()

	h, err := bitmap.ReadHeader(f)
	if err != nil {
		return fmt.Errorf("could not read %q: %w", c.File, err)
	}
	if err = writeHeader(w, c.File, h); err != nil {
		return err
	}

	if !c.Preview {
		return nil
	}
	img, err := bitmap.Load(c.File)
	if err != nil {
		return err
	}
	return writePreview(w, fit(img, c.Columns))
}

func writeHeader(w io.Writer, name string, h bitmap.Header) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "File:\t%s\n", name)
	fmt.Fprintf(tw, "File size:\t%d bytes\n", h.File.Size)
	fmt.Fprintf(tw, "Width:\t%d px\n", h.Info.Width)
	if h.Info.Height < 0 {
		fmt.Fprintf(tw, "Height:\t%d px (top-down)\n", h.Info.Height)
	} else {
		fmt.Fprintf(tw, "Height:\t%d px\n", h.Info.Height)
	}
	fmt.Fprintf(tw, "Bit count:\t%d bits\n", h.Info.BitCount)
	fmt.Fprintf(tw, "Compression:\t%d\n", h.Info.Compression)
	fmt.Fprintf(tw, "Pixel offset:\t%d bytes\n", h.File.OffBits)
	fmt.Fprintf(tw, "Pixel count:\t%d pixels\n", int64(h.Info.Width)*int64(h.Info.Height))
	fmt.Fprintf(tw, "Stride:\t%d bytes\n", h.Stride)
	fmt.Fprintf(tw, "Padding:\t%d bytes\n", h.Padding)
	fmt.Fprintf(tw, "Consistent size:\t%t\n", h.Consistent)
	return tw.Flush()
}

// fit scales img down to at most columns pixels wide, keeping its aspect
// ratio.
func fit(img *bitmap.Image, columns int) image.Image {
	width, height := img.Width(), img.Height()
	if width <= columns {
		return img
	}
	destHeight := max(height*columns/width, 1)
	dest := image.NewRGBA(image.Rect(0, 0, columns, destHeight))
	draw.CatmullRom.Scale(dest, dest.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dest
}

func block(r, g, b uint32) string {
	return fmt.Sprintf("\033[48;2;%d;%d;%dm  \033[0m", r>>8, g>>8, b>>8)
}

func writePreview(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if _, err := io.WriteString(w, block(r, g, b)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}
