package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/faqrag/pkg/embeddings"
	"github.com/papercomputeco/faqrag/pkg/logger"
	"github.com/papercomputeco/faqrag/pkg/vector"
)

// Retriever embeds a query and asks the vector driver for its neighbours.
type Retriever struct {
	embedder embeddings.Embedder
	driver   vector.Driver
	logger   *slog.Logger
}

// NewRetriever creates a Retriever. A nil log discards output.
func NewRetriever(embedder embeddings.Embedder, driver vector.Driver, log *slog.Logger) *Retriever {
	if log == nil {
		log = logger.Nop()
	}
	return &Retriever{
		embedder: embedder,
		driver:   driver,
		logger:   log,
	}
}

// Retrieve returns at most topK records ordered by ascending distance.
// A topK of zero or less means DefaultTopK.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	r.logger.Debug("retrieve request",
		"query", query,
		"top_k", topK,
	)

	queryEmbedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := r.driver.Query(ctx, queryEmbedding, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector store: %w", err)
	}

	// Drivers may return more than asked for.
	if len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

// Top returns the single nearest record, or ErrNoResults.
func (r *Retriever) Top(ctx context.Context, query string) (vector.QueryResult, error) {
	results, err := r.Retrieve(ctx, query, 1)
	if err != nil {
		return vector.QueryResult{}, err
	}
	if len(results) == 0 {
		return vector.QueryResult{}, ErrNoResults
	}
	return results[0], nil
}
