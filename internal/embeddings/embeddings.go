// Package embeddings provides query embedding via multiple providers.
//
// The corpus embeddings themselves are precomputed offline and shipped in
// the bundle; at query time only the incoming question is embedded. The
// provider's model must match the one used to build the bundle, which is
// enforced by a dimension check at startup.
package embeddings

import (
	"context"
	"errors"
)

var (
	// ErrEmptyInput indicates empty input text.
	ErrEmptyInput = errors.New("empty input text")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// Embedder generates a vector embedding for a query.
//
// Implementations must be deterministic for identical text and model
// version, and safe for concurrent use across independent requests.
type Embedder interface {
	// EmbedQuery generates an embedding for a single query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Provider is an Embedder with lifecycle and introspection.
type Provider interface {
	Embedder

	// Dimension returns the embedding dimension for the current model.
	Dimension() int

	// Close releases resources held by the provider.
	Close() error
}
