package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/faqrag/pkg/corpus"
	"github.com/papercomputeco/faqrag/pkg/embeddings"
	"github.com/papercomputeco/faqrag/pkg/logger"
	"github.com/papercomputeco/faqrag/pkg/vector"
)

// Indexer embeds documents and stores them in a vector driver.
type Indexer struct {
	embedder embeddings.Embedder
	driver   vector.Driver
	logger   *slog.Logger
}

// NewIndexer creates an Indexer. A nil log discards output.
func NewIndexer(embedder embeddings.Embedder, driver vector.Driver, log *slog.Logger) *Indexer {
	if log == nil {
		log = logger.Nop()
	}
	return &Indexer{
		embedder: embedder,
		driver:   driver,
		logger:   log,
	}
}

// Index embeds every document in source order and upserts it as
// corpus.DocumentID(i). The first failure stops indexing; records stored
// before it stay in the driver. It returns the IDs that were assigned.
func (ix *Indexer) Index(ctx context.Context, source corpus.Source) ([]string, error) {
	ids := make([]string, 0, len(source))

	for i, doc := range source {
		id := corpus.DocumentID(i)

		embedding, err := ix.embedder.Embed(ctx, doc)
		if err != nil {
			return ids, fmt.Errorf("failed to embed %s: %w", id, err)
		}

		if err := ix.driver.Upsert(ctx, []vector.Record{{
			ID:        id,
			Document:  doc,
			Embedding: embedding,
		}}); err != nil {
			return ids, fmt.Errorf("failed to store %s: %w", id, err)
		}

		ix.logger.Debug("indexed document",
			"id", id,
			"dimensions", len(embedding),
		)
		ids = append(ids, id)
	}

	ix.logger.Info("indexed documents", "count", len(ids))

	return ids, nil
}
