package llm

import (
	"context"
	"errors"
)

// Completer abstracts hosted completion providers.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ErrNotConfigured is returned by the placeholder completer.
var ErrNotConfigured = errors.New("completion client not configured")

// Placeholder is a stub implementation until provider wiring is added.
type Placeholder struct{}

// Complete returns ErrNotConfigured.
func (Placeholder) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	_ = ctx
	_ = systemPrompt
	_ = userPrompt
	return "", ErrNotConfigured
}
