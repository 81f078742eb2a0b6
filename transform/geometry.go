package transform

import (
	"fmt"
	"math"

	"bmpedit/bitmap"
)

// Rotate90 turns the image a quarter clockwise: input (row, col) ends up at
// (col, rows-1-row).
func (p *Pipeline) Rotate90(src *bitmap.Image) *bitmap.Image {
	rows := src.Height()
	return p.fill(rows, src.Width(), func(row, col int) bitmap.Pixel {
		return src.Pixels[rows-1-col][row]
	})
}

// Rotate turns the image by turns*90 degrees taken mod 360 with the sign
// kept: 0 copies, 90 and 180 apply one and two clockwise quarter turns, any
// other angle (270 and every negative one) applies three.
func (p *Pipeline) Rotate(src *bitmap.Image, turns int) *bitmap.Image {
	var steps int
	switch (turns % 4) * 90 % 360 {
	case 0:
		return src.Clone()
	case 90:
		steps = 1
	case 180:
		steps = 2
	default:
		steps = 3
	}

	dst := src
	for range steps {
		dst = p.Rotate90(dst)
	}
	return dst
}

// TurnsFromDegrees converts an angle to quarter turns, rejecting angles
// that are not a multiple of 90.
func TurnsFromDegrees(degrees int) (int, error) {
	if degrees%90 != 0 {
		return 0, fmt.Errorf("%w: angle %d is not a multiple of 90 degrees", ErrUsage, degrees)
	}
	return degrees / 90, nil
}

// Enlarge repeats every pixel xScale times horizontally and yScale times
// vertically.
func (p *Pipeline) Enlarge(src *bitmap.Image, xScale, yScale int) (*bitmap.Image, error) {
	if xScale < 1 || yScale < 1 {
		return nil, fmt.Errorf("%w: scales must be positive, got %dx%d", ErrUsage, xScale, yScale)
	}
	width, height := src.Width(), src.Height()
	if width > math.MaxInt32/xScale || height > math.MaxInt32/yScale {
		return nil, fmt.Errorf("%w: %dx%d enlarged by %dx%d does not fit a bitmap",
			ErrUsage, width, height, xScale, yScale)
	}

	return p.fill(width*xScale, height*yScale, func(row, col int) bitmap.Pixel {
		return src.Pixels[row/yScale][col/xScale]
	}), nil
}
