package codec

import (
	"context"
	"errors"
	"time"
)

// #region errors
// ErrUnavailable signals that no generation backend could answer.
var ErrUnavailable = errors.New("generator unavailable")

// FallbackBanner is the placeholder text some inference services return when
// no model is loaded. Callers treat it as an empty answer.
const FallbackBanner = "Preliminary support summary generated without a connected local LLM."

// #endregion errors

// #region types
// Request is a single text-generation call.
type Request struct {
	Prompt       string
	ImagePath    string // local file path or http(s) URL; optional
	MaxNewTokens int
	MaxTime      time.Duration
}

// Generator produces text for a prompt, optionally conditioned on an image.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Budget bounds a generator call.
type Budget struct {
	MaxNewTokens int
	MaxTime      time.Duration
}

// DefaultBudget returns the budget used when none is configured.
func DefaultBudget() Budget {
	return Budget{
		MaxNewTokens: 220,
		MaxTime:      60 * time.Second,
	}
}

// #endregion types

// #region generator-func
// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// #endregion generator-func

// #region fallback
// Fallback is the offline backend. It never produces text.
type Fallback struct{}

// Generate always returns ErrUnavailable.
func (Fallback) Generate(context.Context, Request) (string, error) {
	return "", ErrUnavailable
}

// #endregion fallback
