//go:build !cgo

package embeddings

import (
	"errors"
)

// ErrFastEmbedNotAvailable is returned when the binary was built without
// cgo support, which the ONNX runtime requires.
var ErrFastEmbedNotAvailable = errors.New("FastEmbed requires cgo (rebuild with CGO_ENABLED=1)")

// NewFastEmbedProvider returns an error when built without cgo.
func NewFastEmbedProvider(cfg FastEmbedConfig) (Provider, error) {
	return nil, ErrFastEmbedNotAvailable
}
