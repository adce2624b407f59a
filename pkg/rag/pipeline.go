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

// Config is the configuration for a Pipeline.
type Config struct {
	// Embedder turns documents and the query into vectors. The same embedder
	// must serve both.
	Embedder embeddings.Embedder

	// VectorDriver stores the indexed documents.
	VectorDriver vector.Driver

	// TopK is how many candidates to retrieve. Defaults to DefaultTopK.
	TopK int

	// Logger is the provided slog logger. Nil discards output.
	Logger *slog.Logger
}

// Result is the outcome of one pipeline run.
type Result struct {
	// IDs are the record IDs assigned during indexing, in source order.
	IDs []string

	Query string

	// Top is the nearest document. Only it feeds the prompt.
	Top vector.QueryResult

	// Candidates holds every retrieved result, Top included.
	Candidates []vector.QueryResult

	Prompt string
}

// Pipeline runs indexing, retrieval and prompt assembly once, in that order.
type Pipeline struct {
	indexer   *Indexer
	retriever *Retriever
	topK      int
	logger    *slog.Logger
}

// NewPipeline creates a Pipeline from c.
func NewPipeline(c *Config) (*Pipeline, error) {
	if c.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if c.VectorDriver == nil {
		return nil, fmt.Errorf("vector driver is required")
	}
	if c.TopK < 0 {
		return nil, fmt.Errorf("top k must not be negative, got %d", c.TopK)
	}

	topK := c.TopK
	if topK == 0 {
		topK = DefaultTopK
	}

	log := c.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Pipeline{
		indexer:   NewIndexer(c.Embedder, c.VectorDriver, log),
		retriever: NewRetriever(c.Embedder, c.VectorDriver, log),
		topK:      topK,
		logger:    log,
	}, nil
}

// Run indexes source, retrieves the nearest documents for query and builds
// the prompt from the top one.
func (p *Pipeline) Run(ctx context.Context, source corpus.Source, query string) (*Result, error) {
	if len(source) == 0 {
		return nil, corpus.ErrEmpty
	}

	ids, err := p.indexer.Index(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("indexing: %w", err)
	}

	candidates, err := p.retriever.Retrieve(ctx, query, p.topK)
	if err != nil {
		return nil, fmt.Errorf("retrieving: %w", err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoResults
	}

	top := candidates[0]
	p.logger.Debug("retrieved top document",
		"id", top.ID,
		"distance", top.Distance,
		"candidates", len(candidates),
	)

	return &Result{
		IDs:        ids,
		Query:      query,
		Top:        top,
		Candidates: candidates,
		Prompt:     AssemblePrompt(top.Document, query),
	}, nil
}
