// Package transform applies the ten editing operations to bitmap images.
// Every operation returns a new image and leaves its input untouched.
package transform

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"bmpedit/bitmap"
	"bmpedit/parallel"
)

// ErrUsage reports an unknown operation or a parameter it cannot work with.
var ErrUsage = errors.New("invalid transform usage")

type Selector int

const (
	Vignette Selector = iota + 1
	Clarendon
	Grayscale
	Rotate90
	Rotate
	Enlarge
	HighContrast
	Lighten
	Darken
	Posterize
)

func (s Selector) String() string {
	if op, ok := Lookup(s); ok {
		return op.Name
	}
	return "transform(" + strconv.Itoa(int(s)) + ")"
}

// Params carries the numeric arguments of every operation; each one reads
// only the fields listed in its Op.Params.
type Params struct {
	Factor    float64 `mapstructure:"factor"`
	Turns     int     `mapstructure:"turns"`
	XScale    int     `mapstructure:"x_scale"`
	YScale    int     `mapstructure:"y_scale"`
	Corrected bool    `mapstructure:"corrected"`
}

type Op struct {
	Selector Selector
	Name     string
	Title    string
	Params   []string

	run func(p *Pipeline, img *bitmap.Image, params Params) (*bitmap.Image, error)
}

var registry = []Op{
	{
		Selector: Vignette, Name: "vignette", Title: "Vignette", Params: []string{"corrected"},
		run: func(p *Pipeline, img *bitmap.Image, params Params) (*bitmap.Image, error) {
			if params.Corrected {
				return p.VignetteCorrected(img), nil
			}
			return p.Vignette(img), nil
		},
	},
	{
		Selector: Clarendon, Name: "clarendon", Title: "Clarendon", Params: []string{"factor"},
		run: func(p *Pipeline, img *bitmap.Image, params Params) (*bitmap.Image, error) {
			return p.Clarendon(img, params.Factor), nil
		},
	},
	{
		Selector: Grayscale, Name: "grayscale", Title: "Grayscale",
		run: func(p *Pipeline, img *bitmap.Image, _ Params) (*bitmap.Image, error) {
			return p.Grayscale(img), nil
		},
	},
	{
		Selector: Rotate90, Name: "rotate90", Title: "Rotate 90 degrees",
		run: func(p *Pipeline, img *bitmap.Image, _ Params) (*bitmap.Image, error) {
			return p.Rotate90(img), nil
		},
	},
	{
		Selector: Rotate, Name: "rotate", Title: "Rotate multiple 90 degrees", Params: []string{"turns"},
		run: func(p *Pipeline, img *bitmap.Image, params Params) (*bitmap.Image, error) {
			return p.Rotate(img, params.Turns), nil
		},
	},
	{
		Selector: Enlarge, Name: "enlarge", Title: "Enlarge", Params: []string{"x_scale", "y_scale"},
		run: func(p *Pipeline, img *bitmap.Image, params Params) (*bitmap.Image, error) {
			return p.Enlarge(img, params.XScale, params.YScale)
		},
	},
	{
		Selector: HighContrast, Name: "high-contrast", Title: "High contrast",
		run: func(p *Pipeline, img *bitmap.Image, _ Params) (*bitmap.Image, error) {
			return p.HighContrast(img), nil
		},
	},
	{
		Selector: Lighten, Name: "lighten", Title: "Lighten", Params: []string{"factor"},
		run: func(p *Pipeline, img *bitmap.Image, params Params) (*bitmap.Image, error) {
			return p.Lighten(img, params.Factor), nil
		},
	},
	{
		Selector: Darken, Name: "darken", Title: "Darken", Params: []string{"factor"},
		run: func(p *Pipeline, img *bitmap.Image, params Params) (*bitmap.Image, error) {
			return p.Darken(img, params.Factor), nil
		},
	},
	{
		Selector: Posterize, Name: "posterize", Title: "Black, white, red, green, blue",
		run: func(p *Pipeline, img *bitmap.Image, _ Params) (*bitmap.Image, error) {
			return p.Posterize(img), nil
		},
	},
}

// Ops lists the operations ordered by selector.
func Ops() []Op {
	return append([]Op(nil), registry...)
}

func Lookup(s Selector) (Op, bool) {
	if s < Vignette || int(s) > len(registry) {
		return Op{}, false
	}
	return registry[s-1], true
}

// Parse accepts an operation name or its selector number.
func Parse(s string) (Op, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if n, err := strconv.Atoi(s); err == nil {
		if op, ok := Lookup(Selector(n)); ok {
			return op, nil
		}
		return Op{}, fmt.Errorf("%w: no transform numbered %d", ErrUsage, n)
	}
	for _, op := range registry {
		if op.Name == s {
			return op, nil
		}
	}
	return Op{}, fmt.Errorf("%w: unknown transform %q", ErrUsage, s)
}

// Names lists the operation names, for CLI enums.
func Names() []string {
	names := make([]string, len(registry))
	for i, op := range registry {
		names[i] = op.Name
	}
	return names
}

func (op Op) Takes(param string) bool {
	for _, p := range op.Params {
		if p == param {
			return true
		}
	}
	return false
}

// Pipeline runs operations, filling output rows on Workers goroutines.
// Fewer than two workers keeps all work on the calling goroutine. The zero
// value is ready to use.
type Pipeline struct {
	Workers int
	Logger  *slog.Logger
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// Apply runs the operation sel on img. On error img is returned unchanged
// next to an error wrapping ErrUsage, bitmap.ErrEmptyImage or
// bitmap.ErrRagged.
func (p *Pipeline) Apply(sel Selector, img *bitmap.Image, params Params) (*bitmap.Image, error) {
	op, ok := Lookup(sel)
	if !ok {
		return img, fmt.Errorf("%w: unknown transform %d", ErrUsage, sel)
	}
	if err := img.Validate(); err != nil {
		return img, fmt.Errorf("%s: %w", op.Name, err)
	}

	out, err := op.run(p, img, params)
	if err != nil {
		p.logger().Warn("transform rejected", "op", op.Name, "error", err)
		return img, fmt.Errorf("%s: %w", op.Name, err)
	}

	p.logger().Debug("transform applied", "op", op.Name,
		"width", out.Width(), "height", out.Height())
	return out, nil
}

// fill builds a width x height image from fn, one pool task per row.
func (p *Pipeline) fill(width, height int, fn func(row, col int) bitmap.Pixel) *bitmap.Image {
	dst := bitmap.New(width, height)
	parallel.Range(max(p.Workers, 1), height, func(row int) {
		line := dst.Pixels[row]
		for col := range line {
			line[col] = fn(row, col)
		}
	})
	return dst
}

// mapPixels is fill for operations that keep the dimensions and look at one
// pixel at a time.
func (p *Pipeline) mapPixels(src *bitmap.Image, fn func(bitmap.Pixel) bitmap.Pixel) *bitmap.Image {
	return p.fill(src.Width(), src.Height(), func(row, col int) bitmap.Pixel {
		return fn(src.Pixels[row][col])
	})
}
