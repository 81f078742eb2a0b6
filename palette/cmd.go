package palette

import (
	"fmt"
	"image/color"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	File string `arg:"" help:"PAL file to write, or to read with --list"`
	List bool   `help:"Print the colors of an existing PAL file instead of writing one" default:"false"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if c.List {
		if _, err := os.Stat(c.File); err != nil {
			return fmt.Errorf("invalid palette path %q: %w", c.File, err)
		}
	}
	return nil
}

func (c *CLICmd) Run() error {
	if c.List {
		return c.list()
	}

	outFile, err := os.Create(c.File)
	if err != nil {
		return fmt.Errorf("could not create palette %q: %w", c.File, err)
	}
	defer func() {
		if closeErr := outFile.Close(); closeErr != nil {
			slog.Error("could not close palette", "name", c.File, "error", closeErr)
		}
	}()

	n, err := WriteTo(outFile, []color.Palette{Extremes})
	if err != nil {
		return fmt.Errorf("could not write palette %q: %w", c.File, err)
	}
	slog.Info("palette written", "file", c.File, "colors", n)
	return nil
}

func (c *CLICmd) list() error {
	inFile, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("could not open palette %q: %w", c.File, err)
	}
	defer func() {
		if closeErr := inFile.Close(); closeErr != nil {
			slog.Error("could not close palette", "name", c.File, "error", closeErr)
		}
	}()

	pals, err := ReadFrom(inFile)
	if err != nil {
		return fmt.Errorf("could not read palette %q: %w", c.File, err)
	}
	for i, pal := range pals {
		for j, col := range pal {
			rgba := color.RGBAModel.Convert(col).(color.RGBA)
			slog.Info("color", "palette", i, "index", j,
				"hex", fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B))
		}
	}
	return nil
}
