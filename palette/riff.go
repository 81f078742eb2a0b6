package palette

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"

	"golang.org/x/image/riff"
)

// LOGPALETTE version stored at the start of every data chunk.
const palVersion = 0x0300

var (
	palType  = riff.FourCC{'P', 'A', 'L', ' '}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
)

// logPalette is the header of a data chunk, followed by Entries entries.
type logPalette struct {
	Version uint16
	Entries uint16
}

// entry is a PALETTEENTRY. Flags is written as zero and ignored on read.
type entry struct {
	R, G, B, Flags uint8
}

// ReadFrom reads every palette of a RIFF PAL stream, including the ones
// nested in LIST chunks.
func ReadFrom(r io.Reader) ([]color.Palette, error) {
	formType, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open RIFF stream: %w", err)
	}
	if formType != palType {
		return nil, fmt.Errorf("unsupported RIFF content type: %s", formType[:])
	}
	var pals []color.Palette
	return pals, walk(rd, &pals)
}

func walk(rd *riff.Reader, pals *[]color.Palette) error {
	for {
		id, size, data, err := rd.Next()
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return fmt.Errorf("could not read chunk after palette %d: %w", len(*pals), err)
		}

		switch id {
		case dataType:
			pal, err := readPalette(data)
			if err != nil {
				return fmt.Errorf("palette %d: %w", len(*pals), err)
			}
			*pals = append(*pals, pal)
		case riff.LIST:
			listType, list, err := riff.NewListReader(size, data)
			if err != nil {
				return fmt.Errorf("could not read list after palette %d: %w", len(*pals), err)
			}
			if listType != palType {
				return fmt.Errorf("unsupported list type: %s", listType[:])
			}
			if err = walk(list, pals); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported chunk type: %s", id[:])
		}
	}
}

func readPalette(r io.Reader) (color.Palette, error) {
	var head logPalette
	if err := binary.Read(r, binary.LittleEndian, &head); err != nil {
		return nil, fmt.Errorf("could not read header: %w", err)
	}
	if head.Version != palVersion {
		return nil, fmt.Errorf("unsupported palette version %#x", head.Version)
	}

	entries := make([]entry, head.Entries)
	if err := binary.Read(r, binary.LittleEndian, entries); err != nil {
		return nil, fmt.Errorf("could not read %d colors: %w", head.Entries, err)
	}

	pal := make(color.Palette, len(entries))
	for i, e := range entries {
		pal[i] = color.RGBA{R: e.R, G: e.G, B: e.B, A: 0xFF}
	}
	return pal, nil
}

// WriteTo stores pals as one RIFF PAL document with a data chunk per
// palette. It returns the number of colors written.
func WriteTo(w io.Writer, pals []color.Palette) (int64, error) {
	var body bytes.Buffer
	body.Write(palType[:])

	var count int64
	for i, pal := range pals {
		if len(pal) > 0xFFFF {
			return 0, fmt.Errorf("palette %d has %d colors, at most 65535 fit", i, len(pal))
		}
		body.Write(dataType[:])
		chunk := []any{
			uint32(4 + 4*len(pal)),
			logPalette{Version: palVersion, Entries: uint16(len(pal))},
			toEntries(pal),
		}
		for _, v := range chunk {
			// writes to a bytes.Buffer do not fail
			_ = binary.Write(&body, binary.LittleEndian, v)
		}
		count += int64(len(pal))
	}

	header := append([]byte("RIFF"), binary.LittleEndian.AppendUint32(nil, uint32(body.Len()))...)
	if _, err := w.Write(header); err != nil {
		return 0, fmt.Errorf("could not write RIFF header: %w", err)
	}
	if _, err := body.WriteTo(w); err != nil {
		return 0, fmt.Errorf("could not write palettes: %w", err)
	}
	return count, nil
}

func toEntries(pal color.Palette) []entry {
	entries := make([]entry, len(pal))
	for i, col := range pal {
		c := color.RGBAModel.Convert(col).(color.RGBA)
		entries[i] = entry{R: c.R, G: c.G, B: c.B}
	}
	return entries
}
