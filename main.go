package main

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/alecthomas/kong"

	"bmpedit/convert"
	"bmpedit/edit"
	"bmpedit/inspect"
	"bmpedit/palette"
	"bmpedit/session"
	"bmpedit/transform"
)

type cli struct {
	Workers int  `help:"Goroutines filling output rows. 0 uses one per CPU." default:"1"`
	Verbose bool `help:"Log debug messages" short:"v" default:"false"`

	Edit    edit.CLICmd    `cmd:"" help:"Apply a transform or a recipe to a bitmap"`
	Shell   session.CLICmd `cmd:"" help:"Edit bitmaps from an interactive menu"`
	Convert convert.CLICmd `cmd:"" help:"Convert other image formats to 24-bit bitmaps and back"`
	Inspect inspect.CLICmd `cmd:"" help:"Show the header fields of a bitmap"`
	Palette palette.CLICmd `cmd:"" help:"Write the posterize palette as a RIFF PAL file"`
}

func (c *cli) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("invalid worker count: %d", c.Workers)
	}
	return nil
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("bmpedit"),
		kong.Description("Edit uncompressed 24-bit bitmap images."),
		kong.UsageOnError(),
	)

	if c.Verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	workers := c.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	pipeline := &transform.Pipeline{Workers: workers, Logger: slog.Default()}
	slog.Debug("running", "command", kctx.Command(), "workers", workers)

	err := kctx.Run(pipeline)
	kctx.FatalIfErrorf(err)
}
