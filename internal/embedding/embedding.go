package embedding

import (
	"context"
	"errors"
)

// Embedder converts free text into a fixed-length numeric vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// ErrNotConfigured is returned by the placeholder embedder.
var ErrNotConfigured = errors.New("embedder not configured")

// Placeholder is a stub implementation until provider wiring is added.
type Placeholder struct{}

// Embed returns ErrNotConfigured.
func (Placeholder) Embed(ctx context.Context, text string) ([]float64, error) {
	_ = ctx
	_ = text
	return nil, ErrNotConfigured
}
