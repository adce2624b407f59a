// Package flags holds the faqrag flag registry shared by subcommands.
package flags

import "github.com/papercomputeco/faqrag/pkg/config"

// Registry defines every configurable faqrag flag once.
var Registry = config.FlagSet{
	config.FlagCorpus: {
		Name:        "corpus",
		Shorthand:   "c",
		ViperKey:    "corpus.path",
		Description: "Corpus file (.txt, .md, .pdf); empty uses the built-in FAQ set",
	},
	config.FlagTopK: {
		Name:        "top-k",
		Shorthand:   "k",
		ViperKey:    "retrieval.top_k",
		Description: "Number of nearest documents to retrieve",
	},
	config.FlagVectorStoreProv: {
		Name:        "vector-store-provider",
		ViperKey:    "vector_store.provider",
		Description: "Vector store provider (memory, sqlite, chroma, qdrant, pgvector)",
	},
	config.FlagVectorStoreTgt: {
		Name:        "vector-store-target",
		ViperKey:    "vector_store.target",
		Description: "Vector store address, connection string or SQLite path",
	},
	config.FlagVectorStoreColl: {
		Name:        "vector-store-collection",
		ViperKey:    "vector_store.collection",
		Description: "Collection or table holding the documents",
	},
	config.FlagMetric: {
		Name:        "metric",
		ViperKey:    "vector_store.metric",
		Description: "Distance metric (l2, cosine)",
	},
	config.FlagEmbeddingProv: {
		Name:        "embedding-provider",
		ViperKey:    "embedding.provider",
		Description: "Embedding provider (hashing, ollama, openai)",
	},
	config.FlagEmbeddingTgt: {
		Name:        "embedding-target",
		ViperKey:    "embedding.target",
		Description: "Embedding provider URL",
	},
	config.FlagEmbeddingModel: {
		Name:        "embedding-model",
		ViperKey:    "embedding.model",
		Description: "Embedding model name",
	},
	config.FlagEmbeddingDims: {
		Name:        "embedding-dimensions",
		ViperKey:    "embedding.dimensions",
		Description: "Embedding dimensionality",
	},
	config.FlagEmbeddingRate: {
		Name:        "embedding-rate-limit",
		ViperKey:    "embedding.rate_limit",
		Description: "Maximum embedding calls per second (0 disables throttling)",
	},
}
