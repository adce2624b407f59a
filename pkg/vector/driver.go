// Package vector provides interfaces and implementations for vector storage
// and nearest-neighbour search over embedded documents.
package vector

import "context"

// Record is a stored document with its embedding. A record is owned by the
// driver that stores it for the lifetime of that driver.
type Record struct {
	// ID is the unique identifier of the record (e.g. "doc_0").
	ID string

	// Document is the original document text.
	Document string

	// Embedding is the vector representation of the document text.
	Embedding []float32
}

// QueryResult represents a search hit ranked by distance.
type QueryResult struct {
	Record

	// Distance to the query vector. Smaller means more similar.
	Distance float32
}

// Driver handles storage and nearest-neighbour search of embeddings.
type Driver interface {
	// Upsert stores records with their embeddings.
	// If a record with the same ID already exists, implementers should replace it.
	Upsert(ctx context.Context, records []Record) error

	// Query finds the topK nearest records to the given embedding.
	// Results are ordered by ascending distance and hold at most topK entries.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Get retrieves records by their IDs. Unknown IDs are skipped.
	Get(ctx context.Context, ids []string) ([]Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the driver.
	Close() error
}
