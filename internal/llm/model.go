// Package llm wraps the generative model that turns a composed prompt
// into an answer.
package llm

import (
	"context"
	"errors"
)

// ErrGenerationFailed is returned when the model produced no usable
// answer. The caller decides whether to resubmit; nothing is retried
// beyond the configured fallback model.
var ErrGenerationFailed = errors.New("answer generation failed")

// ErrInvalidConfig is returned for invalid model configuration.
var ErrInvalidConfig = errors.New("invalid llm config")

// Model generates an answer for a composed prompt.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
