// Package bitmap reads and writes uncompressed 24-bit BMP files.
package bitmap

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

var (
	ErrInvalid    = errors.New("not a valid bitmap")
	ErrEmptyImage = errors.New("image has no pixels")
	ErrRagged     = errors.New("image rows differ in length")
)

type Pixel struct {
	R, G, B uint8
}

// Image is a grid of pixels addressed as Pixels[row][col], row 0 being the
// top of the picture.
type Image struct {
	Pixels [][]Pixel
}

var _ image.Image = (*Image)(nil)

// New allocates a black image. Negative dimensions are treated as zero.
func New(width, height int) *Image {
	width, height = max(width, 0), max(height, 0)
	pixels := make([][]Pixel, height)
	for row := range pixels {
		pixels[row] = make([]Pixel, width)
	}
	return &Image{Pixels: pixels}
}

func (img *Image) Height() int {
	return len(img.Pixels)
}

func (img *Image) Width() int {
	if len(img.Pixels) == 0 {
		return 0
	}
	return len(img.Pixels[0])
}

// Validate reports whether img is a non-empty rectangle.
func (img *Image) Validate() error {
	if img == nil || img.Height() == 0 || img.Width() == 0 {
		return ErrEmptyImage
	}
	width := img.Width()
	for _, row := range img.Pixels {
		if len(row) != width {
			return ErrRagged
		}
	}
	return nil
}

func (img *Image) Clone() *Image {
	pixels := make([][]Pixel, len(img.Pixels))
	for row := range img.Pixels {
		pixels[row] = make([]Pixel, len(img.Pixels[row]))
		copy(pixels[row], img.Pixels[row])
	}
	return &Image{Pixels: pixels}
}

func (img *Image) Equal(other *Image) bool {
	if img.Height() != other.Height() {
		return false
	}
	for row := range img.Pixels {
		if len(img.Pixels[row]) != len(other.Pixels[row]) {
			return false
		}
		for col, p := range img.Pixels[row] {
			if p != other.Pixels[row][col] {
				return false
			}
		}
	}
	return true
}

func (img *Image) ColorModel() color.Model {
	return color.RGBAModel
}

func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width(), img.Height())
}

func (img *Image) At(x, y int) color.Color {
	if !image.Pt(x, y).In(img.Bounds()) {
		return color.RGBA{}
	}
	p := img.Pixels[y][x]
	return color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xFF}
}

// FromImage copies any image into a new Image. Translucent pixels are
// composited over black since the bitmap has no alpha channel.
func FromImage(src image.Image) *Image {
	if img, ok := src.(*Image); ok {
		return img.Clone()
	}

	sr := src.Bounds()
	dr := image.Rect(0, 0, sr.Dx(), sr.Dy())
	rgba := image.NewRGBA(dr)
	draw.Draw(rgba, dr, image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(rgba, dr, src, sr.Min, draw.Over)

	img := New(dr.Dx(), dr.Dy())
	for row := range img.Pixels {
		line := rgba.Pix[row*rgba.Stride:]
		for col := range img.Pixels[row] {
			img.Pixels[row][col] = Pixel{R: line[col*4], G: line[col*4+1], B: line[col*4+2]}
		}
	}
	return img
}
