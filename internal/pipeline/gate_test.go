package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/medrag/internal/retriever"
)

func candidatesWith(similarities ...float64) []retriever.Candidate {
	out := make([]retriever.Candidate, 0, len(similarities))
	for i, s := range similarities {
		out = append(out, retriever.Candidate{Rank: i + 1, DocumentID: i, Similarity: s})
	}
	return out
}

func TestGateClassify(t *testing.T) {
	gate, err := NewGate(GateConfig{})
	require.NoError(t, err)

	tests := []struct {
		name         string
		similarities []float64
		want         Mode
	}{
		{name: "all low relevance", similarities: []float64{0.1, 0.2, 0.05}, want: ModeGeneralKnowledge},
		{name: "one strong match", similarities: []float64{0.5, 0.1}, want: ModeGrounded},
		{name: "empty retrieval", similarities: nil, want: ModeGrounded},
		{name: "exactly at threshold", similarities: []float64{0.3}, want: ModeGrounded},
		{name: "just below threshold", similarities: []float64{0.2999}, want: ModeGeneralKnowledge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gate.Classify(candidatesWith(tt.similarities...)))
		})
	}
}

func TestGateShowSources(t *testing.T) {
	gate, err := NewGate(GateConfig{})
	require.NoError(t, err)

	assert.True(t, gate.ShowSources(candidatesWith(0.05, 0.2)))
	assert.False(t, gate.ShowSources(candidatesWith(0.05, 0.1)))
	assert.False(t, gate.ShowSources(candidatesWith(0.15)))
	assert.False(t, gate.ShowSources(nil))
}

func TestGateConfigValidate(t *testing.T) {
	cfg := GateConfig{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultLowRelevanceThreshold, cfg.LowRelevanceThreshold)
	assert.Equal(t, DefaultDisplayThreshold, cfg.DisplayThreshold)

	_, err := NewGate(GateConfig{LowRelevanceThreshold: 1.5})
	assert.Error(t, err)

	_, err = NewGate(GateConfig{DisplayThreshold: -0.1})
	assert.Error(t, err)
}
