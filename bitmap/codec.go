package bitmap

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Decode reads a 24 or 32 bits per pixel bitmap. Any stream whose declared
// file size disagrees with the size derived from its header yields an error
// wrapping ErrInvalid and no image.
func Decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not read bitmap: %w", err)
	}
	if len(data) < headersSize {
		return nil, fmt.Errorf("%w: only %d bytes", ErrInvalid, len(data))
	}
	if data[0] != 'B' || data[1] != 'M' {
		return nil, fmt.Errorf("%w: bad signature %q", ErrInvalid, data[:2])
	}

	le := binary.LittleEndian
	fileSize := uint64(le.Uint32(data[2:]))
	offset := uint64(le.Uint32(data[10:]))
	width := uint64(le.Uint32(data[18:]))
	height := uint64(le.Uint32(data[22:]))
	bitCount := uint64(le.Uint16(data[28:]))

	switch {
	case bitCount != 24 && bitCount != 32:
		return nil, fmt.Errorf("%w: unsupported %d bits per pixel", ErrInvalid, bitCount)
	case width == 0 || height == 0 || width > math.MaxInt32 || height > math.MaxInt32:
		return nil, fmt.Errorf("%w: unsupported dimensions %dx%d", ErrInvalid, int32(width), int32(height))
	}

	stride, padding := rowLayout(width, bitCount)
	if height > math.MaxUint32/stride || offset+stride*height != fileSize {
		return nil, fmt.Errorf("%w: declared size %d does not match layout of %dx%d at %d bpp",
			ErrInvalid, fileSize, width, height, bitCount)
	}
	if uint64(len(data)) < fileSize {
		return nil, fmt.Errorf("%w: truncated, %d of %d bytes", ErrInvalid, len(data), fileSize)
	}

	img := New(int(width), int(height))
	step := int(bitCount / 8)
	pos := int(offset)
	// stored rows run bottom to top
	for row := int(height) - 1; row >= 0; row-- {
		line := img.Pixels[row]
		for col := range line {
			line[col] = Pixel{B: data[pos], G: data[pos+1], R: data[pos+2]}
			pos += step
		}
		pos += int(padding)
	}

	return img, nil
}

// Encode writes img as a 24 bits per pixel bitmap.
func Encode(w io.Writer, img *Image) error {
	if err := img.Validate(); err != nil {
		return err
	}

	width, height := img.Width(), img.Height()
	stride, _ := rowLayout(uint64(width), 24)
	if width > math.MaxInt32 || uint64(height) > (math.MaxUint32-headersSize)/stride {
		return fmt.Errorf("%dx%d image does not fit a bitmap", width, height)
	}
	fh, ih := newHeaders(width, height)

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, &fh); err != nil {
		return fmt.Errorf("could not write file header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, &ih); err != nil {
		return fmt.Errorf("could not write info header: %w", err)
	}

	// trailing padding bytes are never touched and stay zero
	buf := make([]byte, stride)
	for row := height - 1; row >= 0; row-- {
		for col, p := range img.Pixels[row] {
			buf[col*3] = p.B
			buf[col*3+1] = p.G
			buf[col*3+2] = p.R
		}
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("could not write row %d: %w", row, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("could not flush bitmap: %w", err)
	}
	return nil
}
