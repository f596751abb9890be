// Package transform applies an optional monotonic transform to the target
// before fitting and inverts it before anything user-facing: predictions,
// fed-back forecast values and error metrics all live on the original scale.
package transform

import (
	"math"

	"github.com/manojb/expensecast/internal/utils"
)

// Target is a monotonic target transform with its inverse.
type Target struct {
	method string
}

// None returns the identity transform.
func None() *Target {
	return &Target{}
}

// New creates a transform for the given method: "log" or "log1p". Log is
// undefined at zero, so zero-heavy expense series should prefer log1p.
func New(method string) (*Target, error) {
	switch method {
	case "log", "log1p":
		return &Target{method: method}, nil
	default:
		return nil, utils.NewValidationErrorf("unsupported target transform %q", method)
	}
}

// Enabled reports whether the transform is anything other than identity.
func (t *Target) Enabled() bool {
	return t.method != ""
}

// Apply transforms a target slice into model space, returning a new slice.
func (t *Target) Apply(y []float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = t.applyOne(v)
	}
	return out
}

// Invert maps predictions back to the original scale, returning a new slice.
func (t *Target) Invert(y []float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = t.InvertOne(v)
	}
	return out
}

// InvertOne maps a single prediction back to the original scale.
func (t *Target) InvertOne(v float64) float64 {
	switch t.method {
	case "log":
		return math.Exp(v)
	case "log1p":
		return math.Expm1(v)
	default:
		return v
	}
}

func (t *Target) applyOne(v float64) float64 {
	switch t.method {
	case "log":
		return math.Log(v)
	case "log1p":
		return math.Log1p(v)
	default:
		return v
	}
}
