package edit

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/alecthomas/kong"

	"bmpedit/bitmap"
	"bmpedit/recipe"
	"bmpedit/transform"
)

type CLICmd struct {
	In        string  `help:"Source bitmap" required:"" type:"existingfile"`
	Out       string  `help:"Destination bitmap. Relative to the source folder if not absolute." required:""`
	Op        string  `help:"Transform to apply, by name or menu number (vignette, clarendon, grayscale, rotate90, rotate, enlarge, high-contrast, lighten, darken, posterize)" xor:"what"`
	Recipe    string  `help:"YAML recipe of transforms to apply in order" xor:"what"`
	Factor    float64 `help:"Scale factor for clarendon, lighten and darken" default:"1" group:"params"`
	Turns     int     `help:"Multiple of 90 degrees to rotate by. Angles other than 0, 90 and 180 mod 360 give three clockwise quarter turns." group:"params"`
	XScale    int     `help:"Horizontal enlarge factor" default:"1" group:"params"`
	YScale    int     `help:"Vertical enlarge factor" default:"1" group:"params"`
	Corrected bool    `help:"Vignette falloff measured against both dimensions" default:"false" group:"params"`
	Force     bool    `help:"Overwrite an existing destination" default:"false"`

	op     transform.Op   `kong:"-"`
	recipe *recipe.Recipe `kong:"-"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	src, err := filepath.Abs(c.In)
	if err != nil {
		return fmt.Errorf("invalid source path %q: %w", c.In, err)
	}
	c.In = src

	if !filepath.IsAbs(c.Out) {
		c.Out = filepath.Join(filepath.Dir(src), c.Out)
	}

	switch {
	case c.Op == "" && c.Recipe == "":
		return fmt.Errorf("one of --op or --recipe is required")
	case c.Recipe != "":
		if c.recipe, err = recipe.Load(c.Recipe); err != nil {
			return err
		}
	default:
		if c.op, err = transform.Parse(c.Op); err != nil {
			return err
		}
		if c.op.Takes("x_scale") && (c.XScale < 1 || c.YScale < 1) {
			return fmt.Errorf("invalid enlarge scale: %dx%d", c.XScale, c.YScale)
		}
	}

	return CheckDestination(c.In, c.Out, c.Force)
}

func (c *CLICmd) Params() transform.Params {
	return transform.Params{
		Factor:    c.Factor,
		Turns:     c.Turns,
		XScale:    c.XScale,
		YScale:    c.YScale,
		Corrected: c.Corrected,
	}
}

func (c *CLICmd) Run(pipeline *transform.Pipeline) error {
	logger := slog.Default().With("file", c.In)

	img, err := bitmap.Load(c.In)
	if err != nil {
		return err
	}
	logger.Info("loaded", "width", img.Width(), "height", img.Height())

	if c.recipe != nil {
		img, err = c.recipe.Run(pipeline, img)
	} else {
		logger.Info("applying", "op", c.op.Name)
		img, err = pipeline.Apply(c.op.Selector, img, c.Params())
	}
	if err != nil {
		return fmt.Errorf("could not edit %q: %w", c.In, err)
	}

	if err = bitmap.Save(c.Out, img); err != nil {
		return err
	}
	logger.Info("saved", "dest", c.Out, "width", img.Width(), "height", img.Height())
	return nil
}
