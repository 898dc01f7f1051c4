package pipeline

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/medrag/internal/retriever"
)

const (
	// previewLimit caps each excerpt embedded in a grounded prompt.
	previewLimit = 500

	// truncationMarker is appended to cut excerpts.
	truncationMarker = "..."
)

// Compose builds the model prompt for the chosen mode. Output is a pure
// function of its arguments, byte for byte.
func Compose(query string, mode Mode, candidates []retriever.Candidate) string {
	if mode == ModeGeneralKnowledge {
		return composeGeneral(query)
	}
	return composeGrounded(query, candidates)
}

func composeGeneral(query string) string {
	return fmt.Sprintf(`MEDICAL QUESTION: %s

You are a medical expert. Provide accurate, evidence-based information.
Answer comprehensively with proper medical terminology and structure your response with clear sections.`, query)
}

func composeGrounded(query string, candidates []retriever.Candidate) string {
	excerpts := make([]string, 0, len(candidates))
	for i, c := range candidates {
		excerpts = append(excerpts, fmt.Sprintf("[Document %d, Relevance: %.3f]:\n%s",
			i+1, c.Similarity, preview(c.Text)))
	}

	return fmt.Sprintf(`You are a medical analyst with access to patient records. Provide comprehensive analysis.

QUESTION: %s

PATIENT RECORDS:
%s

INSTRUCTIONS:
1. Analyze what the patient records reveal
2. Identify patterns and correlations
3. Supplement with general medical knowledge where appropriate
4. Always cite specific documents (Document 1, 2, etc.)
5. Structure response with clear sections and bullet points
6. Include: "Analysis based on %d patient records and medical literature"

COMPREHENSIVE ANALYSIS:`, query, strings.Join(excerpts, "\n\n"), len(candidates))
}

// preview truncates document text to the excerpt limit.
func preview(text string) string {
	if len(text) > previewLimit {
		return text[:previewLimit] + truncationMarker
	}
	return text
}
