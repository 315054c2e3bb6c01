package embedding

import (
	"context"
	"strings"
)

// EmbeddingProvider turns one text into a vector. Implementations do not
// retry; callers decide what a failure means for them.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// KeySource yields the current API key. It is consulted on every call so a
// settings refresh takes effect without rebuilding the provider.
type KeySource interface {
	APIKey() string
}

// StaticKey is a KeySource with a fixed key.
type StaticKey string

func (k StaticKey) APIKey() string {
	return string(k)
}

func checkInput(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}
	return nil
}
