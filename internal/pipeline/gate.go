package pipeline

import (
	"fmt"

	"github.com/fyrsmithlabs/medrag/internal/retriever"
)

const (
	// DefaultLowRelevanceThreshold: when every candidate scores below
	// this, retrieval found nothing worth grounding on.
	DefaultLowRelevanceThreshold = 0.3

	// DefaultDisplayThreshold: sources are only shown to the caller when
	// at least one candidate scores above this.
	DefaultDisplayThreshold = 0.15
)

// GateConfig configures the relevance gate thresholds.
type GateConfig struct {
	LowRelevanceThreshold float64 `koanf:"low_relevance_threshold"`
	DisplayThreshold      float64 `koanf:"display_threshold"`
}

// Validate checks the thresholds and fills defaults.
func (c *GateConfig) Validate() error {
	if c.LowRelevanceThreshold == 0 {
		c.LowRelevanceThreshold = DefaultLowRelevanceThreshold
	}
	if c.DisplayThreshold == 0 {
		c.DisplayThreshold = DefaultDisplayThreshold
	}
	if c.LowRelevanceThreshold < 0 || c.LowRelevanceThreshold > 1 {
		return fmt.Errorf("low_relevance_threshold must be in [0, 1], got %v", c.LowRelevanceThreshold)
	}
	if c.DisplayThreshold < 0 || c.DisplayThreshold > 1 {
		return fmt.Errorf("display_threshold must be in [0, 1], got %v", c.DisplayThreshold)
	}
	return nil
}

// Gate decides between grounded and general-knowledge composition from
// the retrieval score distribution.
type Gate struct {
	config GateConfig
}

// NewGate creates a relevance gate.
func NewGate(cfg GateConfig) (*Gate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Gate{config: cfg}, nil
}

// Classify picks the composition mode. A non-empty candidate list where
// every similarity falls below the low-relevance threshold means the
// corpus has nothing to say; an empty list stays grounded so the
// composer can state that no records were found.
func (g *Gate) Classify(candidates []retriever.Candidate) Mode {
	if len(candidates) == 0 {
		return ModeGrounded
	}
	for _, c := range candidates {
		if c.Similarity >= g.config.LowRelevanceThreshold {
			return ModeGrounded
		}
	}
	return ModeGeneralKnowledge
}

// ShowSources reports whether the candidates are worth surfacing to the
// caller alongside the answer.
func (g *Gate) ShowSources(candidates []retriever.Candidate) bool {
	for _, c := range candidates {
		if c.Similarity > g.config.DisplayThreshold {
			return true
		}
	}
	return false
}
