// Package retriever ranks corpus documents against a query. It supports
// pure vector search, pure lexical search, and reciprocal-rank fusion of
// the two.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/fyrsmithlabs/medrag/internal/corpus"
	"github.com/fyrsmithlabs/medrag/internal/embeddings"
	"github.com/fyrsmithlabs/medrag/internal/index"
)

// Strategy selects how candidates are ranked.
type Strategy string

const (
	// StrategyVector ranks by embedding distance only.
	StrategyVector Strategy = "vector"
	// StrategyLexical ranks by BM25 score only.
	StrategyLexical Strategy = "lexical"
	// StrategyHybrid fuses vector and lexical rankings with RRF.
	StrategyHybrid Strategy = "hybrid"
)

// rrfK is the reciprocal-rank-fusion constant.
const rrfK = 60

// DefaultTopK is the number of candidates returned when the caller does
// not specify one.
const DefaultTopK = 3

// ErrInvalidStrategy is returned for an unrecognized strategy name.
var ErrInvalidStrategy = errors.New("invalid retrieval strategy")

// Candidate is one retrieved document with its rank and similarity.
// Similarity is 1/(1+distance) for vector hits, so identical vectors
// score 1.0 and the score decays toward 0 with distance.
type Candidate struct {
	Rank       int     `json:"rank"`
	DocumentID int     `json:"document_id"`
	Text       string  `json:"document_text"`
	Similarity float64 `json:"similarity"`
}

// VectorSearcher is the nearest-neighbor index consumed by the retriever.
type VectorSearcher interface {
	Search(query []float32, k int) ([]index.Hit, error)
}

// LexicalSearcher is the full-text index consumed by the retriever.
type LexicalSearcher interface {
	Search(query string, k int) ([]index.LexicalHit, error)
}

// Config configures retrieval behavior.
type Config struct {
	// TopK is the default number of candidates per query.
	TopK int `koanf:"top_k"`

	// Strategy is vector, lexical or hybrid.
	Strategy Strategy `koanf:"strategy"`
}

// Validate checks the configuration and fills defaults.
func (c *Config) Validate() error {
	if c.TopK <= 0 {
		c.TopK = DefaultTopK
	}
	switch c.Strategy {
	case "":
		c.Strategy = StrategyVector
	case StrategyVector, StrategyLexical, StrategyHybrid:
	default:
		return fmt.Errorf("%w: %q (supported: vector, lexical, hybrid)", ErrInvalidStrategy, c.Strategy)
	}
	return nil
}

// Retriever ranks corpus documents against queries. All fields are set
// at construction and never mutated, so a single Retriever is safe for
// concurrent use.
type Retriever struct {
	embedder embeddings.Embedder
	vector   VectorSearcher
	lexical  LexicalSearcher
	docs     []corpus.Document
	config   Config
}

// New creates a Retriever. The lexical searcher may be nil when the
// strategy is vector-only.
func New(cfg Config, embedder embeddings.Embedder, vector VectorSearcher, lexical LexicalSearcher, docs []corpus.Document) (*Retriever, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Strategy != StrategyLexical {
		if embedder == nil {
			return nil, fmt.Errorf("embedder is required for %s strategy", cfg.Strategy)
		}
		if vector == nil {
			return nil, fmt.Errorf("vector index is required for %s strategy", cfg.Strategy)
		}
	}
	if cfg.Strategy != StrategyVector && lexical == nil {
		return nil, fmt.Errorf("lexical index is required for %s strategy", cfg.Strategy)
	}

	return &Retriever{
		embedder: embedder,
		vector:   vector,
		lexical:  lexical,
		docs:     docs,
		config:   cfg,
	}, nil
}

// Retrieve returns up to topK candidates ranked 1..n in decreasing
// relevance. A topK of zero or less uses the configured default. An
// empty result is not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]Candidate, error) {
	if topK <= 0 {
		topK = r.config.TopK
	}

	switch r.config.Strategy {
	case StrategyLexical:
		return r.retrieveLexical(query, topK)
	case StrategyHybrid:
		return r.retrieveHybrid(ctx, query, topK)
	default:
		return r.retrieveVector(ctx, query, topK)
	}
}

func (r *Retriever) retrieveVector(ctx context.Context, query string, topK int) ([]Candidate, error) {
	hits, err := r.vectorHits(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(hits))
	for _, hit := range hits {
		if !r.validID(hit.DocumentID) {
			continue
		}
		candidates = append(candidates, Candidate{
			DocumentID: hit.DocumentID,
			Text:       r.docs[hit.DocumentID].Text,
			Similarity: Similarity(hit.Distance),
		})
	}
	assignRanks(candidates)
	return candidates, nil
}

func (r *Retriever) retrieveLexical(query string, topK int) ([]Candidate, error) {
	hits, err := r.lexical.Search(query, topK)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	// BM25 scores are unbounded; normalize by the best score so the
	// relevance gate's thresholds stay meaningful.
	var maxScore float64
	for _, hit := range hits {
		if hit.Score > maxScore {
			maxScore = hit.Score
		}
	}

	candidates := make([]Candidate, 0, len(hits))
	for _, hit := range hits {
		if !r.validID(hit.DocumentID) {
			continue
		}
		similarity := 0.0
		if maxScore > 0 {
			similarity = hit.Score / maxScore
		}
		candidates = append(candidates, Candidate{
			DocumentID: hit.DocumentID,
			Text:       r.docs[hit.DocumentID].Text,
			Similarity: similarity,
		})
	}
	assignRanks(candidates)
	return candidates, nil
}

func (r *Retriever) retrieveHybrid(ctx context.Context, query string, topK int) ([]Candidate, error) {
	vectorHits, err := r.vectorHits(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	lexicalHits, err := r.lexical.Search(query, topK)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	type fused struct {
		id         int
		score      float64
		similarity float64
	}
	byID := make(map[int]*fused)

	rank := 0
	for _, hit := range vectorHits {
		if !r.validID(hit.DocumentID) {
			continue
		}
		rank++
		byID[hit.DocumentID] = &fused{
			id:         hit.DocumentID,
			score:      1.0 / float64(rrfK+rank),
			similarity: Similarity(hit.Distance),
		}
	}
	rank = 0
	for _, hit := range lexicalHits {
		if !r.validID(hit.DocumentID) {
			continue
		}
		rank++
		f, ok := byID[hit.DocumentID]
		if !ok {
			// Lexical-only hits carry no embedding distance, so their
			// similarity stays 0 and the gate treats them as weak.
			f = &fused{id: hit.DocumentID}
			byID[hit.DocumentID] = f
		}
		f.score += 1.0 / float64(rrfK+rank)
	}

	merged := make([]*fused, 0, len(byID))
	for _, f := range byID {
		merged = append(merged, f)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].score != merged[j].score {
			return merged[i].score > merged[j].score
		}
		return merged[i].id < merged[j].id
	})
	if len(merged) > topK {
		merged = merged[:topK]
	}

	candidates := make([]Candidate, 0, len(merged))
	for _, f := range merged {
		candidates = append(candidates, Candidate{
			DocumentID: f.id,
			Text:       r.docs[f.id].Text,
			Similarity: f.similarity,
		})
	}
	assignRanks(candidates)
	return candidates, nil
}

func (r *Retriever) vectorHits(ctx context.Context, query string, topK int) ([]index.Hit, error) {
	vec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	hits, err := r.vector.Search(vec, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return hits, nil
}

// validID filters the index sentinel (-1) and anything outside the
// corpus bounds.
func (r *Retriever) validID(id int) bool {
	return id >= 0 && id < len(r.docs)
}

// assignRanks numbers candidates 1..n in slice order, after sentinel
// filtering, so ranks never have gaps.
func assignRanks(candidates []Candidate) {
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
}

// Similarity converts a non-negative distance to a score in (0, 1],
// with distance 0 mapping to exactly 1.0.
func Similarity(distance float64) float64 {
	return 1.0 / (1.0 + distance)
}
