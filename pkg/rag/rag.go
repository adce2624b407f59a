// Package rag wires a document source, an embedder and a vector driver into a
// retrieval-augmented prompt: index every document, retrieve the nearest ones
// for a query, then assemble the prompt from the best match.
package rag

import "errors"

// DefaultTopK is the number of candidates retrieved when none is configured.
const DefaultTopK = 1

// ErrNoResults is returned when a query finds nothing in the index.
var ErrNoResults = errors.New("no documents matched the query")
