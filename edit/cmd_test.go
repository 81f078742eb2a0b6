package edit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmpedit/bitmap"
	"bmpedit/transform"
)

func writeSample(t *testing.T, dir string) string {
	t.Helper()
	img := bitmap.New(3, 2)
	for row := range img.Pixels {
		for col := range img.Pixels[row] {
			img.Pixels[row][col] = bitmap.Pixel{R: uint8(row * 100), G: uint8(col * 80), B: 40}
		}
	}
	path := filepath.Join(dir, "in.bmp")
	require.NoError(t, bitmap.Save(path, img))
	return path
}

func TestEditOp(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir)

	cmd := &CLICmd{In: in, Out: "out.bmp", Op: "rotate90", Factor: 1, XScale: 1, YScale: 1}
	require.NoError(t, cmd.Validate(nil))
	assert.Equal(t, filepath.Join(dir, "out.bmp"), cmd.Out)
	require.NoError(t, cmd.Run(&transform.Pipeline{}))

	got, err := bitmap.Load(cmd.Out)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Width())
	assert.Equal(t, 3, got.Height())
}

func TestEditRecipe(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir)
	recipePath := filepath.Join(dir, "double.yml")
	require.NoError(t, os.WriteFile(recipePath, []byte(`
name: double
steps:
  - op: enlarge
    params: {x_scale: 2, y_scale: 2}
  - op: grayscale
`), 0o644))

	cmd := &CLICmd{In: in, Out: filepath.Join(dir, "out.bmp"), Recipe: recipePath}
	require.NoError(t, cmd.Validate(nil))
	require.NoError(t, cmd.Run(&transform.Pipeline{Workers: 2}))

	got, err := bitmap.Load(cmd.Out)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Width())
	assert.Equal(t, 4, got.Height())
	for _, line := range got.Pixels {
		for _, px := range line {
			assert.Equal(t, px.R, px.G)
			assert.Equal(t, px.G, px.B)
		}
	}
}

func TestEditValidate(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir)
	existing := filepath.Join(dir, "existing.bmp")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))

	tests := map[string]struct {
		cmd     CLICmd
		wantErr error
	}{
		"no operation":   {cmd: CLICmd{In: in, Out: "a.bmp"}},
		"unknown op":     {cmd: CLICmd{In: in, Out: "a.bmp", Op: "blur"}, wantErr: transform.ErrUsage},
		"zero scale":     {cmd: CLICmd{In: in, Out: "a.bmp", Op: "enlarge", XScale: 0, YScale: 2}},
		"same as source": {cmd: CLICmd{In: in, Out: "in.bmp", Op: "grayscale"}, wantErr: ErrSameFile},
		"exists":         {cmd: CLICmd{In: in, Out: existing, Op: "grayscale"}},
		"missing recipe": {cmd: CLICmd{In: in, Out: "a.bmp", Recipe: filepath.Join(dir, "none.yml")}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.cmd.Validate(nil)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	forced := CLICmd{In: in, Out: existing, Op: "grayscale", Force: true}
	assert.NoError(t, forced.Validate(nil))
}

func TestEditRunKeepsDestinationOnFailure(t *testing.T) {
	dir := t.TempDir()
	in := writeSample(t, dir)
	out := filepath.Join(dir, "out.bmp")
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0o644))

	cmd := &CLICmd{In: in, Out: out, Op: "enlarge", XScale: 1, YScale: 1, Force: true}
	require.NoError(t, cmd.Validate(nil))
	// scales changed after validation reach the transform itself
	cmd.XScale = 0
	err := cmd.Run(&transform.Pipeline{})
	assert.ErrorIs(t, err, transform.ErrUsage)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestCheckDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.bmp")
	require.NoError(t, os.WriteFile(src, []byte("a"), 0o644))

	assert.ErrorIs(t, CheckDestination(src, filepath.Join(dir, ".", "a.bmp"), true), ErrSameFile)
	assert.NoError(t, CheckDestination(src, filepath.Join(dir, "b.bmp"), false))
	assert.Error(t, CheckDestination(src, dir, true))

	link := filepath.Join(dir, "link.bmp")
	if err := os.Link(src, link); err == nil {
		assert.ErrorIs(t, CheckDestination(src, link, true), ErrSameFile)
	}
}
