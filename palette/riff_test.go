package palette

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	gray := color.Palette{color.Gray{Y: 0x10}, color.Gray{Y: 0x80}}

	var buf bytes.Buffer
	n, err := WriteTo(&buf, []color.Palette{Extremes, gray})
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)

	// RIFF size covers everything after the first 8 bytes
	assert.EqualValues(t, buf.Len()-8, binary.LittleEndian.Uint32(buf.Bytes()[4:]))

	pals, err := ReadFrom(&buf)
	require.NoError(t, err)
	require.Len(t, pals, 2)
	assert.Equal(t, Extremes, pals[0])
	assert.Equal(t, color.Palette{
		color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xFF},
		color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF},
	}, pals[1])
}

func TestReadFromRejects(t *testing.T) {
	_, err := ReadFrom(bytes.NewReader([]byte("RIFF\x04\x00\x00\x00WAVE")))
	assert.ErrorContains(t, err, "unsupported RIFF content type")

	_, err = ReadFrom(bytes.NewReader([]byte("nope")))
	assert.Error(t, err)

	var buf bytes.Buffer
	_, err = WriteTo(&buf, []color.Palette{Extremes})
	require.NoError(t, err)
	data := buf.Bytes()
	// palVersion follows the 12 byte RIFF header and the 8 byte chunk header
	data[20] = 0x01
	_, err = ReadFrom(bytes.NewReader(data))
	assert.ErrorContains(t, err, "unsupported palette version")
}

func TestRGB(t *testing.T) {
	r, g, b := RGB(Green)
	assert.Equal(t, [3]uint8{0, 0xFF, 0}, [3]uint8{r, g, b})
	r, g, b = RGB(White)
	assert.Equal(t, [3]uint8{0xFF, 0xFF, 0xFF}, [3]uint8{r, g, b})
}

func TestCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extremes.pal")
	cmd := &CLICmd{File: path}
	require.NoError(t, cmd.Run())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	pals, err := ReadFrom(f)
	require.NoError(t, err)
	assert.Equal(t, []color.Palette{Extremes}, pals)

	cmd.List = true
	assert.NoError(t, cmd.Run())
}
