package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultModel         = "gemini-2.5-flash"
	defaultFallbackModel = "gemini-1.5-flash"
	defaultTimeout       = 60 * time.Second
)

// Config configures the Gemini generative model.
type Config struct {
	APIKey string `koanf:"api_key"`

	// Model is tried first; FallbackModel is used when the primary call
	// fails, which covers models not yet available on the account.
	Model         string `koanf:"model"`
	FallbackModel string `koanf:"fallback_model"`

	// Timeout bounds a single generation call.
	Timeout time.Duration `koanf:"timeout"`

	Temperature float32 `koanf:"temperature"`
}

// Validate checks the configuration and fills defaults.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: gemini api key is required", ErrInvalidConfig)
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.FallbackModel == "" {
		c.FallbackModel = defaultFallbackModel
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return nil
}

// Gemini is a Model backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	config Config
	logger *zap.Logger
}

// NewGemini creates a Gemini model client.
func NewGemini(ctx context.Context, cfg Config, logger *zap.Logger) (*Gemini, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{client: client, config: cfg, logger: logger}, nil
}

// Generate produces an answer for the prompt, falling back to the
// secondary model when the primary fails.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt cannot be empty", ErrGenerationFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	text, err := g.generateWith(ctx, g.config.Model, prompt)
	if err == nil {
		return text, nil
	}
	if g.config.FallbackModel == "" || g.config.FallbackModel == g.config.Model {
		return "", err
	}

	g.logger.Warn("primary model failed, retrying with fallback",
		zap.String("model", g.config.Model),
		zap.String("fallback", g.config.FallbackModel),
		zap.Error(err))

	return g.generateWith(ctx, g.config.FallbackModel, prompt)
}

func (g *Gemini) generateWith(ctx context.Context, model, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(g.config.Temperature),
	}

	resp, err := g.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, config)
	if err != nil {
		return "", fmt.Errorf("%w: model %s: %v", ErrGenerationFailed, model, err)
	}

	var text strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					text.WriteString(part.Text)
				}
			}
			if text.Len() > 0 {
				break
			}
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("%w: model %s returned no text", ErrGenerationFailed, model)
	}
	return text.String(), nil
}

var _ Model = (*Gemini)(nil)
