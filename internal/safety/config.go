package safety

import (
	"fmt"
	"strings"
)

// Config configures the classifier phrase tables. Order matters: PII
// categories are checked in slice order, and the first matching phrase
// decides the verdict.
type Config struct {
	// PIICategories defines phrases that request personally identifiable
	// information, grouped by subcategory.
	PIICategories []PIICategory `koanf:"pii_categories"`

	// PersonalPatterns are first-person phrasings that indicate a request
	// for personal medical advice.
	PersonalPatterns []string `koanf:"personal_patterns"`

	// GeneralizingTerms exempt a query from the personal-advice category,
	// treating it as a population-level question.
	GeneralizingTerms []string `koanf:"generalizing_terms"`

	// SuspiciousTerms are security, credential, or destructive-action
	// terms that block a query outright.
	SuspiciousTerms []string `koanf:"suspicious_terms"`

	// compiled phrases (populated by Validate)
	compiledPII []compiledCategory
}

// PIICategory groups PII phrases under a subcategory name.
type PIICategory struct {
	// Name is reported as the verdict subcategory on a match.
	Name string `koanf:"name"`

	// Phrases are matched as contiguous word sequences.
	Phrases []string `koanf:"phrases"`
}

// compiledCategory holds a category with pre-tokenized phrases.
type compiledCategory struct {
	name    string
	phrases []compiledPhrase
}

// compiledPhrase is a lowercased phrase with its word count, used for
// window-sized matching against the tokenized query.
type compiledPhrase struct {
	text  string
	words int
}

// DefaultConfig returns a configuration with the standard phrase tables.
func DefaultConfig() *Config {
	return &Config{
		PIICategories:     DefaultPIICategories(),
		PersonalPatterns:  DefaultPersonalPatterns(),
		GeneralizingTerms: DefaultGeneralizingTerms(),
		SuspiciousTerms:   DefaultSuspiciousTerms(),
	}
}

// Validate validates and compiles the configuration.
func (c *Config) Validate() error {
	if len(c.PIICategories) == 0 {
		return fmt.Errorf("at least one PII category is required")
	}

	c.compiledPII = make([]compiledCategory, 0, len(c.PIICategories))
	for i, cat := range c.PIICategories {
		if cat.Name == "" {
			return fmt.Errorf("pii category %d: name is required", i)
		}
		if len(cat.Phrases) == 0 {
			return fmt.Errorf("pii category %s: at least one phrase is required", cat.Name)
		}

		compiled := compiledCategory{
			name:    cat.Name,
			phrases: make([]compiledPhrase, 0, len(cat.Phrases)),
		}
		for _, phrase := range cat.Phrases {
			normalized := strings.ToLower(strings.TrimSpace(phrase))
			if normalized == "" {
				return fmt.Errorf("pii category %s: empty phrase", cat.Name)
			}
			compiled.phrases = append(compiled.phrases, compiledPhrase{
				text:  normalized,
				words: len(strings.Fields(normalized)),
			})
		}
		c.compiledPII = append(c.compiledPII, compiled)
	}

	for i, p := range c.PersonalPatterns {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("personal_patterns %d: empty pattern", i)
		}
	}
	for i, t := range c.SuspiciousTerms {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("suspicious_terms %d: empty term", i)
		}
	}

	return nil
}
