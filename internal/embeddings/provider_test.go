package embeddings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderUnknown(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: "openai"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "openai")
}

func TestNewGeminiProviderValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  GeminiConfig
	}{
		{name: "missing api key", cfg: GeminiConfig{Dimension: 384}},
		{name: "zero dimension", cfg: GeminiConfig{APIKey: "test-key"}},
		{name: "negative dimension", cfg: GeminiConfig{APIKey: "test-key", Dimension: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGeminiProvider(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
