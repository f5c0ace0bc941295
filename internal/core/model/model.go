// Package model defines the seam to the external token-classification model
// and the ONNX Runtime adapter that implements it
package model

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no usable model backend is configured or
// loading it failed. The pipeline treats this as "zero model candidates",
// not as a request failure
var ErrUnavailable = errors.New("model: backend unavailable")

// Token is one unit of the model's raw output: the surface form, its BIO or
// BIOES tag, a [0,1] score, and [Start,End) byte offsets into the exact text
// that was passed to Infer
type Token struct {
	Text  string
	Tag   string
	Score float64
	Start int
	End   int
}

// Port is the inference seam the pipeline consumes.
// Implementations must be safe for concurrent calls
type Port interface {
	Infer(ctx context.Context, text string) ([]Token, error)
}

// Disabled is a Port that always reports the model as unavailable.
// Used by the CLI and by deployments that run patterns+lexicon only
type Disabled struct{}

// Infer implements Port
func (Disabled) Infer(context.Context, string) ([]Token, error) {
	return nil, ErrUnavailable
}

// Func adapts a plain function to a Port, mostly useful in tests
type Func func(ctx context.Context, text string) ([]Token, error)

// Infer implements Port
func (f Func) Infer(ctx context.Context, text string) ([]Token, error) {
	return f(ctx, text)
}
