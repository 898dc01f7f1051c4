// Package safety classifies incoming queries before any retrieval or
// model call happens. The classifier is a pure function over the query
// text driven by configurable phrase tables.
package safety
