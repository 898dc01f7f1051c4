// Package pipeline runs a query through safety check, retrieval, the
// relevance gate, prompt composition and generation, in that order.
package pipeline

// Mode is the answer-composition path chosen by the relevance gate.
// There are exactly two terminal modes and no further transitions.
type Mode string

const (
	// ModeGeneralKnowledge answers from the model's own domain knowledge
	// with no reference to retrieved material.
	ModeGeneralKnowledge Mode = "general_knowledge"

	// ModeGrounded conditions the model on retrieved document excerpts.
	ModeGrounded Mode = "grounded"
)
