package bitmap

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	fileHeaderSize = 14
	infoHeaderSize = 40
	headersSize    = fileHeaderSize + infoHeaderSize

	// 2835 pixels per meter is roughly 72 DPI.
	pixelsPerMeter = 2835
)

// FileHeader is the BITMAPFILEHEADER that opens every bitmap file.
// https://learn.microsoft.com/en-us/windows/win32/api/wingdi/ns-wingdi-bitmapfileheader
type FileHeader struct {
	Type      [2]byte // "BM"
	Size      uint32  // size of the whole file in bytes
	Reserved1 uint16
	Reserved2 uint16
	OffBits   uint32 // offset of the pixel array
}

// InfoHeader is the 40 byte BITMAPINFOHEADER.
type InfoHeader struct {
	Size            uint32
	Width           int32
	Height          int32
	Planes          uint16
	BitCount        uint16
	Compression     uint32
	SizeImage       uint32 // pixel array size including row padding
	XPixelsPerM     int32
	YPixelsPerM     int32
	ColorsUsed      uint32
	ColorsImportant uint32
}

// Header is what inspect reports about a file without decoding its pixels.
type Header struct {
	File FileHeader
	Info InfoHeader

	Stride  int // bytes per stored row, padding included
	Padding int // zero bytes closing each row
	// Consistent is true when the declared file size matches the size
	// derived from offset, stride and height.
	Consistent bool
}

// rowLayout returns the stored byte length of one row of width pixels at
// bitCount bits per pixel, and how much of it is padding.
func rowLayout(width, bitCount uint64) (stride, padding uint64) {
	scanline := width * (bitCount / 8)
	padding = (4 - scanline%4) % 4
	return scanline + padding, padding
}

func newHeaders(width, height int) (FileHeader, InfoHeader) {
	stride, _ := rowLayout(uint64(width), 24)
	sizeImage := uint32(stride) * uint32(height)

	fh := FileHeader{
		Type:    [2]byte{'B', 'M'},
		Size:    headersSize + sizeImage,
		OffBits: headersSize,
	}
	ih := InfoHeader{
		Size:        infoHeaderSize,
		Width:       int32(width),
		Height:      int32(height),
		Planes:      1,
		BitCount:    24,
		SizeImage:   sizeImage,
		XPixelsPerM: pixelsPerMeter,
		YPixelsPerM: pixelsPerMeter,
	}
	return fh, ih
}

// ReadHeader decodes the file and info headers of a bitmap stream. Only the
// first 54 bytes of r are consumed.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h.File); err != nil {
		return h, fmt.Errorf("%w: could not read file header: %w", ErrInvalid, err)
	}
	if h.File.Type != [2]byte{'B', 'M'} {
		return h, fmt.Errorf("%w: bad signature %q", ErrInvalid, h.File.Type[:])
	}
	if err := binary.Read(r, binary.LittleEndian, &h.Info); err != nil {
		return h, fmt.Errorf("%w: could not read info header: %w", ErrInvalid, err)
	}

	width := uint64(uint32(h.Info.Width))
	height := uint64(uint32(h.Info.Height))
	stride, padding := rowLayout(width, uint64(h.Info.BitCount))
	h.Stride = int(stride)
	h.Padding = int(padding)
	h.Consistent = uint64(h.File.Size) == uint64(h.File.OffBits)+stride*height

	return h, nil
}
