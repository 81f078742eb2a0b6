// Package palette holds the fixed colors posterize maps onto and reads and
// writes them as Microsoft RIFF palette files.
package palette

import (
	"image/color"
)

// Indices into Extremes.
const (
	White = iota
	Black
	Red
	Green
	Blue
)

var Extremes = color.Palette{
	White: color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF},
	Black: color.RGBA{A: 0xFF},
	Red:   color.RGBA{R: 0xFF, A: 0xFF},
	Green: color.RGBA{G: 0xFF, A: 0xFF},
	Blue:  color.RGBA{B: 0xFF, A: 0xFF},
}

// RGB returns the 8-bit channels of Extremes[i].
func RGB(i int) (r, g, b uint8) {
	c := color.RGBAModel.Convert(Extremes[i]).(color.RGBA)
	return c.R, c.G, c.B
}
