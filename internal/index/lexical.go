package index

import (
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve"

	"github.com/fyrsmithlabs/medrag/internal/corpus"
)

// LexicalHit is a single keyword search result. Score is the term-weighted
// relevance score assigned by bleve; higher is more relevant.
type LexicalHit struct {
	DocumentID int
	Score      float64
}

// indexedDoc is the shape handed to bleve for each corpus record.
type indexedDoc struct {
	Text string `json:"text"`
}

// Lexical is a keyword index over the corpus, backed by an in-memory bleve
// index built once at load.
type Lexical struct {
	index bleve.Index
}

// NewLexical builds the keyword index over all documents.
func NewLexical(docs []corpus.Document) (*Lexical, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyIndex
	}

	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating lexical index: %w", err)
	}

	batch := idx.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(strconv.Itoa(doc.ID), indexedDoc{Text: doc.Text}); err != nil {
			return nil, fmt.Errorf("indexing document %d: %w", doc.ID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return nil, fmt.Errorf("building lexical index: %w", err)
	}

	return &Lexical{index: idx}, nil
}

// Search returns up to k hits for the query, best score first. An empty
// result is valid: it means no document shares a term with the query.
func (l *Lexical) Search(query string, k int) ([]LexicalHit, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), k, 0, false)
	res, err := l.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	hits := make([]LexicalHit, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := strconv.Atoi(hit.ID)
		if err != nil {
			// An unparsable ID can only come from a foreign index.
			return nil, fmt.Errorf("lexical search: bad document id %q", hit.ID)
		}
		hits = append(hits, LexicalHit{DocumentID: id, Score: hit.Score})
	}
	return hits, nil
}

// Close releases the underlying bleve index.
func (l *Lexical) Close() error {
	return l.index.Close()
}
