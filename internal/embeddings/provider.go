package embeddings

import (
	"context"
	"fmt"
)

// Config selects and configures an embedding provider.
type Config struct {
	// Provider is "fastembed" (local ONNX, default) or "gemini" (API).
	Provider string `koanf:"provider"`

	FastEmbed FastEmbedConfig `koanf:"fastembed"`
	Gemini    GeminiConfig    `koanf:"gemini"`
}

// FastEmbedConfig configures the local ONNX embedding provider.
type FastEmbedConfig struct {
	Model     string `koanf:"model"`
	CacheDir  string `koanf:"cache_dir"`
	MaxLength int    `koanf:"max_length"`
}

// GeminiConfig configures the Gemini API embedding provider.
type GeminiConfig struct {
	APIKey    string `koanf:"api_key"`
	Model     string `koanf:"model"`
	Dimension int    `koanf:"dimension"`
}

// NewProvider creates an embedding provider from configuration.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", "fastembed":
		return NewFastEmbedProvider(cfg.FastEmbed)
	case "gemini":
		return NewGeminiProvider(ctx, cfg.Gemini)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q (supported: fastembed, gemini)", ErrInvalidConfig, cfg.Provider)
	}
}
