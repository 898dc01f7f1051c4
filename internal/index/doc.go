// Package index provides the two read-only retrieval indexes built over the
// corpus bundle at startup: a flat exact nearest-neighbor index over the
// precomputed embedding matrix, and a bleve keyword index over the document
// texts.
//
// Both indexes are immutable after construction and safe for concurrent use
// without locking. All mutation happens in the offline bundle build step.
package index
