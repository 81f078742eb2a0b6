package recipe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmpedit/bitmap"
	"bmpedit/transform"
)

func gray(width, height int, v uint8) *bitmap.Image {
	img := bitmap.New(width, height)
	for row := range img.Pixels {
		for col := range img.Pixels[row] {
			img.Pixels[row][col] = bitmap.Pixel{R: v, G: v, B: v}
		}
	}
	return img
}

func TestRun(t *testing.T) {
	r, err := Parse([]byte(`
name: postcard
steps:
  - op: enlarge
    params: {x_scale: 2, y_scale: "height < 100 ? 3 : 1"}
  - op: rotate
    params: {degrees: 90}
  - op: 9
    params: {factor: "0.5"}
`))
	require.NoError(t, err)
	assert.Equal(t, "postcard", r.Name)
	require.Len(t, r.Steps, 3)

	img := gray(2, 1, 200)
	out, err := r.Run(&transform.Pipeline{}, img)
	require.NoError(t, err)
	// 2x1 enlarged to 4x3, then turned to 3x4
	assert.Equal(t, 3, out.Width())
	assert.Equal(t, 4, out.Height())
	assert.True(t, gray(3, 4, 100).Equal(out))
	// input untouched
	assert.True(t, gray(2, 1, 200).Equal(img))
}

func TestDefaults(t *testing.T) {
	r, err := Parse([]byte("steps:\n  - op: lighten\n  - op: enlarge\n    params: {y_scale: 2}\n"))
	require.NoError(t, err)

	img := gray(3, 2, 40)
	out, err := r.Run(&transform.Pipeline{}, img)
	require.NoError(t, err)
	assert.True(t, gray(3, 4, 40).Equal(out))
}

func TestExpressions(t *testing.T) {
	img := gray(5, 2, 0)

	v, err := evaluate("paddedRow(width)", img)
	require.NoError(t, err)
	assert.Equal(t, 16.0, v)

	v, err = evaluate("width * height", img)
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)

	_, err = evaluate("width +", img)
	assert.Error(t, err)
	_, err = evaluate("paddedRow(1, 2)", img)
	assert.Error(t, err)

	v, err = evaluate("floor(width / 3)", img)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
}

func TestFractionalWholeParams(t *testing.T) {
	img := gray(8, 2, 10)

	for _, params := range []string{
		`{x_scale: "width / 3"}`,
		`{y_scale: 1.5}`,
	} {
		r, err := Parse([]byte("steps:\n  - op: enlarge\n    params: " + params + "\n"))
		require.NoError(t, err)
		got, err := r.Run(&transform.Pipeline{}, img)
		assert.ErrorIs(t, err, transform.ErrUsage, params)
		assert.ErrorContains(t, err, "whole number", params)
		assert.Nil(t, got)
	}

	r, err := Parse([]byte("steps:\n  - op: rotate\n    params: {turns: \"width / 16\"}\n"))
	require.NoError(t, err)
	_, err = r.Run(&transform.Pipeline{}, img)
	assert.ErrorIs(t, err, transform.ErrUsage)

	// whole-valued expression results still pass
	r, err = Parse([]byte("steps:\n  - op: enlarge\n    params: {x_scale: \"floor(width / 3)\", y_scale: \"height / 2\"}\n"))
	require.NoError(t, err)
	got, err := r.Run(&transform.Pipeline{}, img)
	require.NoError(t, err)
	assert.Equal(t, 16, got.Width())
	assert.Equal(t, 2, got.Height())
}

func TestValidate(t *testing.T) {
	tests := map[string]string{
		"no steps":       "name: empty\n",
		"unknown op":     "steps:\n  - op: blur\n",
		"unknown number": "steps:\n  - op: 12\n",
		"foreign param":  "steps:\n  - op: grayscale\n    params: {factor: 2}\n",
		"turns and deg":  "steps:\n  - op: rotate\n    params: {turns: 1, degrees: 90}\n",
		"unknown field":  "steps:\n  - op: grayscale\n    colour: red\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestRunErrors(t *testing.T) {
	img := gray(2, 2, 10)

	r, err := Parse([]byte("steps:\n  - op: rotate\n    params: {degrees: 45}\n"))
	require.NoError(t, err)
	_, err = r.Run(&transform.Pipeline{}, img)
	assert.ErrorIs(t, err, transform.ErrUsage)

	r, err = Parse([]byte("steps:\n  - op: enlarge\n    params: {x_scale: \"width - 2\"}\n"))
	require.NoError(t, err)
	_, err = r.Run(&transform.Pipeline{}, img)
	assert.ErrorIs(t, err, transform.ErrUsage)

	r, err = Parse([]byte("steps:\n  - op: darken\n    params: {factor: \"nope(\"}\n"))
	require.NoError(t, err)
	_, err = r.Run(&transform.Pipeline{}, img)
	assert.ErrorContains(t, err, "step 1 (darken)")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.yml")
	require.NoError(t, os.WriteFile(path, []byte("name: g\nsteps:\n  - op: grayscale\n"), 0o644))
	r, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "g", r.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
