// Package recipe runs a sequence of transforms described in a YAML file.
//
//	name: postcard
//	steps:
//	  - op: enlarge
//	    params: {x_scale: 2, y_scale: "height < 100 ? 3 : 1"}
//	  - op: lighten
//	    params: {factor: 0.8}
//
// String parameters are expressions over the width and height of the image
// as it enters the step. Turns, degrees and scales must come out whole:
// "width/3" on a width of 8 is an error, "floor(width/3)" is not.
package recipe

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"os"
	"slices"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v2"

	"bmpedit/bitmap"
	"bmpedit/transform"
)

// degreesParam is accepted by rotate in place of turns.
const degreesParam = "degrees"

// wholeParams are integers; fractional values, expression results
// included, are rejected rather than truncated.
var wholeParams = map[string]bool{
	"turns":      true,
	"x_scale":    true,
	"y_scale":    true,
	degreesParam: true,
}

type Recipe struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

type Step struct {
	Op     string                 `yaml:"op"`
	Params map[string]interface{} `yaml:"params,omitempty"`
}

func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read recipe %q: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid recipe %q: %w", path, err)
	}
	return r, nil
}

func Parse(data []byte) (*Recipe, error) {
	var r Recipe
	if err := yaml.UnmarshalStrict(data, &r); err != nil {
		if yamlErr, ok := err.(*yaml.TypeError); ok {
			return nil, fmt.Errorf("recipe has wrong types: %v", yamlErr.Errors)
		}
		return nil, fmt.Errorf("could not parse recipe: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks every step names a known operation and only passes it
// parameters it reads. Expressions are not evaluated here.
func (r *Recipe) Validate() error {
	if len(r.Steps) == 0 {
		return fmt.Errorf("%w: recipe %q has no steps", transform.ErrUsage, r.Name)
	}
	for i, step := range r.Steps {
		op, err := transform.Parse(step.Op)
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		for key := range step.Params {
			if !accepts(op, key) {
				return fmt.Errorf("%w: step %d (%s) takes no parameter %q", transform.ErrUsage, i+1, op.Name, key)
			}
		}
		if _, hasTurns := step.Params["turns"]; hasTurns {
			if _, hasDegrees := step.Params[degreesParam]; hasDegrees {
				return fmt.Errorf("%w: step %d (%s) sets both turns and degrees", transform.ErrUsage, i+1, op.Name)
			}
		}
	}
	return nil
}

func accepts(op transform.Op, key string) bool {
	if op.Selector == transform.Rotate && key == degreesParam {
		return true
	}
	return op.Takes(key)
}

// Run applies the steps in order and returns the final image. The first
// failing step stops the run.
func (r *Recipe) Run(p *transform.Pipeline, img *bitmap.Image) (*bitmap.Image, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("recipe", r.Name)

	for i, step := range r.Steps {
		op, err := transform.Parse(step.Op)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		params, err := step.decode(op, img)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, op.Name, err)
		}

		logger.Info("applying step", "step", i+1, "op", op.Name, "params", params)
		if img, err = p.Apply(op.Selector, img, params); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return img, nil
}

// decode evaluates the step's expressions against img and fills a
// transform.Params from the result.
func (s Step) decode(op transform.Op, img *bitmap.Image) (transform.Params, error) {
	var params transform.Params

	raw := make(map[string]interface{}, len(s.Params))
	for _, key := range slices.Sorted(maps.Keys(s.Params)) {
		value := s.Params[key]
		if expr, ok := value.(string); ok {
			v, err := evaluate(expr, img)
			if err != nil {
				return params, fmt.Errorf("parameter %q: %w", key, err)
			}
			value = v
		}
		if f, ok := value.(float64); ok && wholeParams[key] && f != math.Trunc(f) {
			return params, fmt.Errorf("%w: parameter %q must be a whole number, got %v", transform.ErrUsage, key, f)
		}
		raw[key] = value
	}

	if deg, ok := raw[degreesParam]; ok {
		var degrees int
		if err := mapstructure.WeakDecode(deg, &degrees); err != nil {
			return params, fmt.Errorf("parameter %q: %w", degreesParam, err)
		}
		turns, err := transform.TurnsFromDegrees(degrees)
		if err != nil {
			return params, err
		}
		delete(raw, degreesParam)
		raw["turns"] = turns
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &params,
	})
	if err != nil {
		return params, err
	}
	if err := decoder.Decode(raw); err != nil {
		return params, fmt.Errorf("%w: %w", transform.ErrUsage, err)
	}

	// operations that scale get the neutral value when a key is left out
	if _, ok := raw["factor"]; !ok && op.Takes("factor") {
		params.Factor = 1
	}
	if _, ok := raw["x_scale"]; !ok && op.Takes("x_scale") {
		params.XScale = 1
	}
	if _, ok := raw["y_scale"]; !ok && op.Takes("y_scale") {
		params.YScale = 1
	}
	return params, nil
}
