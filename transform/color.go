package transform

import (
	"math"

	"bmpedit/bitmap"
	"bmpedit/palette"
)

const (
	lightAverage = 170
	darkAverage  = 90

	whiteSum = 550
	blackSum = 150
)

// channel clamps v to [0,255] and truncates the fraction.
func channel(v float64) uint8 {
	switch {
	case !(v > 0): // NaN too
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

func scale(p bitmap.Pixel, factor float64) bitmap.Pixel {
	return bitmap.Pixel{
		R: channel(float64(p.R) * factor),
		G: channel(float64(p.G) * factor),
		B: channel(float64(p.B) * factor),
	}
}

func towardWhite(c uint8, factor float64) uint8 {
	return channel(255 - (255-float64(c))*factor)
}

func lighten(p bitmap.Pixel, factor float64) bitmap.Pixel {
	return bitmap.Pixel{
		R: towardWhite(p.R, factor),
		G: towardWhite(p.G, factor),
		B: towardWhite(p.B, factor),
	}
}

func average(p bitmap.Pixel) int {
	return (int(p.R) + int(p.G) + int(p.B)) / 3
}

func extreme(i int) bitmap.Pixel {
	r, g, b := palette.RGB(i)
	return bitmap.Pixel{R: r, G: g, B: b}
}

// Vignette darkens pixels by their distance from the center. Both the
// distance and the scale are measured against the row count, so on images
// wider than tall the side columns go fully black.
func (p *Pipeline) Vignette(src *bitmap.Image) *bitmap.Image {
	rows, cols := src.Height(), src.Width()
	return p.fill(cols, rows, func(row, col int) bitmap.Pixel {
		dr, dc := row-rows/2, col-cols/2
		distance := int(math.Sqrt(float64(dr*dr + dc*dc)))
		return scale(src.Pixels[row][col], float64(rows-distance)/float64(rows))
	})
}

// VignetteCorrected measures from the exact center of the image and scales
// by the center to corner distance, so the falloff follows both dimensions.
func (p *Pipeline) VignetteCorrected(src *bitmap.Image) *bitmap.Image {
	rows, cols := src.Height(), src.Width()
	cy, cx := float64(rows)/2, float64(cols)/2
	radius := math.Hypot(cy, cx)
	return p.fill(cols, rows, func(row, col int) bitmap.Pixel {
		distance := math.Hypot(float64(row)+0.5-cy, float64(col)+0.5-cx)
		return scale(src.Pixels[row][col], (radius-distance)/radius)
	})
}

// Clarendon pushes light pixels toward white and dark ones toward black by
// factor, leaving midtones alone.
func (p *Pipeline) Clarendon(src *bitmap.Image, factor float64) *bitmap.Image {
	return p.mapPixels(src, func(px bitmap.Pixel) bitmap.Pixel {
		switch avg := average(px); {
		case avg >= lightAverage:
			return lighten(px, factor)
		case avg < darkAverage:
			return scale(px, factor)
		}
		return px
	})
}

func (p *Pipeline) Grayscale(src *bitmap.Image) *bitmap.Image {
	return p.mapPixels(src, func(px bitmap.Pixel) bitmap.Pixel {
		gray := uint8(average(px))
		return bitmap.Pixel{R: gray, G: gray, B: gray}
	})
}

func (p *Pipeline) HighContrast(src *bitmap.Image) *bitmap.Image {
	white, black := extreme(palette.White), extreme(palette.Black)
	return p.mapPixels(src, func(px bitmap.Pixel) bitmap.Pixel {
		if average(px) >= 255/2 {
			return white
		}
		return black
	})
}

// Lighten maps every channel c to 255-(255-c)*factor: 0 gives white, 1
// keeps the image.
func (p *Pipeline) Lighten(src *bitmap.Image, factor float64) *bitmap.Image {
	return p.mapPixels(src, func(px bitmap.Pixel) bitmap.Pixel {
		return lighten(px, factor)
	})
}

// Darken multiplies every channel by factor: 0 gives black, 1 keeps the
// image.
func (p *Pipeline) Darken(src *bitmap.Image, factor float64) *bitmap.Image {
	return p.mapPixels(src, func(px bitmap.Pixel) bitmap.Pixel {
		return scale(px, factor)
	})
}

// Posterize recolors every pixel with one of palette.Extremes: white or
// black for very bright or dark pixels, otherwise the color of its largest
// channel, ties going to red, then green.
func (p *Pipeline) Posterize(src *bitmap.Image) *bitmap.Image {
	return p.mapPixels(src, func(px bitmap.Pixel) bitmap.Pixel {
		r, g, b := int(px.R), int(px.G), int(px.B)
		switch top := max(r, g, b); {
		case r+g+b >= whiteSum:
			return extreme(palette.White)
		case r+g+b <= blackSum:
			return extreme(palette.Black)
		case top == r:
			return extreme(palette.Red)
		case top == g:
			return extreme(palette.Green)
		}
		return extreme(palette.Blue)
	})
}
