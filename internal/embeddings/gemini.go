package embeddings

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiEmbedModel = "gemini-embedding-001"

// GeminiProvider embeds queries through the Gemini embedding API.
// The output dimensionality is pinned to the corpus bundle dimension so
// query vectors are comparable with the precomputed document vectors.
type GeminiProvider struct {
	client    *genai.Client
	model     string
	dimension int
}

// NewGeminiProvider creates a Gemini embedding provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is required", ErrInvalidConfig)
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("%w: gemini embedding dimension must be positive", ErrInvalidConfig)
	}

	model := cfg.Model
	if model == "" {
		model = defaultGeminiEmbedModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		model:     model,
		dimension: cfg.Dimension,
	}, nil
}

// EmbedQuery generates an embedding for a single query.
func (p *GeminiProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}

	outputDim := int32(p.dimension)
	result, err := p.client.Models.EmbedContent(ctx, p.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{OutputDimensionality: &outputDim})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrEmbeddingFailed)
	}

	embedding := result.Embeddings[0].Values
	if len(embedding) != p.dimension {
		return nil, fmt.Errorf("%w: got %d dimensions, expected %d", ErrEmbeddingFailed, len(embedding), p.dimension)
	}
	return embedding, nil
}

// Dimension returns the configured embedding dimension.
func (p *GeminiProvider) Dimension() int {
	return p.dimension
}

// Close releases resources held by the provider. The genai client keeps
// no persistent connections, so this is a no-op.
func (p *GeminiProvider) Close() error {
	return nil
}
