package safety

import (
	"strings"
)

// Category names reported in verdicts.
const (
	CategorySafe           = "safe"
	CategoryPIIRequest     = "pii_request"
	CategoryPersonalAdvice = "personal_advice"
	CategorySuspicious     = "suspicious_query"
)

// Verdict is the result of classifying a single query.
type Verdict struct {
	// Allowed is true when the query may proceed to retrieval.
	Allowed bool `json:"allowed"`

	// Category is one of safe, pii_request, personal_advice or
	// suspicious_query.
	Category string `json:"category"`

	// Subcategory names the matched PII category for pii_request
	// verdicts, empty otherwise.
	Subcategory string `json:"subcategory,omitempty"`
}

// Classifier screens queries before retrieval.
type Classifier interface {
	// Check classifies a query. It is total: any string input, including
	// the empty string, produces a verdict.
	Check(query string) Verdict
}

// classifier is the default phrase-table implementation.
type classifier struct {
	config *Config
}

// New creates a Classifier with the given configuration.
// If config is nil, DefaultConfig() is used.
func New(cfg *Config) (Classifier, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &classifier{config: cfg}, nil
}

// MustNew creates a Classifier, panicking on error.
func MustNew(cfg *Config) Classifier {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

// Check classifies a query. Precedence is fixed: PII beats personal
// advice beats suspicious, and the first matching phrase wins.
func (c *classifier) Check(query string) Verdict {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return Verdict{Allowed: true, Category: CategorySafe}
	}

	words := strings.Fields(normalized)

	for _, cat := range c.config.compiledPII {
		for _, phrase := range cat.phrases {
			if matchesWordWindow(words, phrase) {
				return Verdict{Category: CategoryPIIRequest, Subcategory: cat.name}
			}
		}
	}

	for _, pattern := range c.config.PersonalPatterns {
		if !strings.Contains(normalized, pattern) {
			continue
		}
		if c.isGeneralizing(normalized) {
			continue
		}
		return Verdict{Category: CategoryPersonalAdvice}
	}

	for _, term := range c.config.SuspiciousTerms {
		if strings.Contains(normalized, term) {
			return Verdict{Category: CategorySuspicious}
		}
	}

	return Verdict{Allowed: true, Category: CategorySafe}
}

// matchesWordWindow reports whether the phrase occurs in the query as a
// contiguous word sequence. A window of the phrase's word count slides
// over the query tokens, so a multi-word phrase only matches inside a
// span of exactly that many words.
func matchesWordWindow(words []string, phrase compiledPhrase) bool {
	if phrase.words > len(words) {
		return false
	}
	for i := 0; i+phrase.words <= len(words); i++ {
		window := strings.Join(words[i:i+phrase.words], " ")
		if strings.Contains(window, phrase.text) {
			return true
		}
	}
	return false
}

// isGeneralizing reports whether the query contains a term that marks it
// as a population-level question.
func (c *classifier) isGeneralizing(normalized string) bool {
	for _, term := range c.config.GeneralizingTerms {
		if strings.Contains(normalized, term) {
			return true
		}
	}
	return false
}

var _ Classifier = (*classifier)(nil)
