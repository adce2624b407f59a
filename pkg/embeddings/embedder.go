// Package embeddings defines the text embedding boundary of the pipeline.
// Providers return plain []float32 vectors so callers never depend on a
// model's internal types.
package embeddings

import "context"

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}
