package recipe

import (
	"fmt"
	"math"

	"github.com/knetic/govaluate"

	"bmpedit/bitmap"
)

var functions = map[string]govaluate.ExpressionFunction{
	// paddedRow(width) is the stored size in bytes of a 24-bit row
	"paddedRow": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("paddedRow expects 1 argument, got %d", len(args))
		}
		width, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("paddedRow argument must be numeric")
		}
		rowBytes := int(width) * 3
		return float64(rowBytes + (4-rowBytes%4)%4), nil
	},
	"floor": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("floor expects 1 argument, got %d", len(args))
		}
		v, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("floor argument must be numeric")
		}
		return math.Floor(v), nil
	},
}

func evaluate(expr string, img *bitmap.Image) (interface{}, error) {
	expression, err := govaluate.NewEvaluableExpressionWithFunctions(expr, functions)
	if err != nil {
		return nil, fmt.Errorf("could not parse expression %q: %w", expr, err)
	}

	result, err := expression.Evaluate(map[string]interface{}{
		"width":  float64(img.Width()),
		"height": float64(img.Height()),
	})
	if err != nil {
		return nil, fmt.Errorf("could not evaluate %q: %w", expr, err)
	}
	return result, nil
}
