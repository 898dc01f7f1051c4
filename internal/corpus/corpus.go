// Package corpus loads the precomputed medical-record bundle.
//
// The bundle is produced by an offline indexing step and consists of a
// document collection plus a parallel embedding matrix. It is treated as an
// opaque, versioned artifact: the loader validates count and dimension
// consistency and nothing else.
package corpus

import "errors"

// ErrBundle indicates a missing, malformed, or inconsistent corpus bundle.
// Load failures are fatal: the system cannot serve any request without a
// valid bundle.
var ErrBundle = errors.New("invalid corpus bundle")

// Document is a single immutable medical record. ID is the document's
// position in the corpus and is stable for the lifetime of the bundle.
type Document struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Bundle holds the loaded corpus: documents and their embeddings, row i of
// Embeddings belonging to Documents[i]. Read-only after Load returns.
type Bundle struct {
	Documents  []Document
	Embeddings [][]float32
	Dimension  int
}

// Len returns the number of documents in the bundle.
func (b *Bundle) Len() int {
	return len(b.Documents)
}
