package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent faqrag configuration stored as config.toml
// in the .faqrag/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Corpus      CorpusConfig      `toml:"corpus"`
	Retrieval   RetrievalConfig   `toml:"retrieval"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
}

// CorpusConfig selects the documents to index. An empty path means the
// built-in FAQ set.
type CorpusConfig struct {
	Path string `toml:"path,omitempty"`
}

// RetrievalConfig holds query settings.
type RetrievalConfig struct {
	TopK  int    `toml:"top_k,omitempty"`
	Query string `toml:"query,omitempty"`
}

// VectorStoreConfig holds vector store settings.
type VectorStoreConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Collection string `toml:"collection,omitempty"`
	Metric     string `toml:"metric,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string  `toml:"provider,omitempty"`
	Target     string  `toml:"target,omitempty"`
	Model      string  `toml:"model,omitempty"`
	Dimensions uint    `toml:"dimensions,omitempty"`
	RateLimit  float64 `toml:"rate_limit,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

// configKeyOrder lists configKeys in the order they appear in config.toml.
var configKeyOrder = []string{
	"corpus.path",
	"retrieval.query",
	"retrieval.top_k",
	"vector_store.provider",
	"vector_store.target",
	"vector_store.collection",
	"vector_store.metric",
	"embedding.provider",
	"embedding.target",
	"embedding.model",
	"embedding.dimensions",
	"embedding.rate_limit",
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"corpus.path":     stringKey(func(c *Config) *string { return &c.Corpus.Path }),
	"retrieval.query": stringKey(func(c *Config) *string { return &c.Retrieval.Query }),
	"retrieval.top_k": {
		get: func(c *Config) string {
			if c.Retrieval.TopK == 0 {
				return ""
			}
			return strconv.Itoa(c.Retrieval.TopK)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for retrieval.top_k: %w", err)
			}
			if n < 1 {
				return fmt.Errorf("invalid value for retrieval.top_k: must be at least 1, got %d", n)
			}
			c.Retrieval.TopK = n
			return nil
		},
	},
	"vector_store.provider":   stringKey(func(c *Config) *string { return &c.VectorStore.Provider }),
	"vector_store.target":     stringKey(func(c *Config) *string { return &c.VectorStore.Target }),
	"vector_store.collection": stringKey(func(c *Config) *string { return &c.VectorStore.Collection }),
	"vector_store.metric":     stringKey(func(c *Config) *string { return &c.VectorStore.Metric }),
	"embedding.provider":      stringKey(func(c *Config) *string { return &c.Embedding.Provider }),
	"embedding.target":        stringKey(func(c *Config) *string { return &c.Embedding.Target }),
	"embedding.model":         stringKey(func(c *Config) *string { return &c.Embedding.Model }),
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},
	"embedding.rate_limit": {
		get: func(c *Config) string {
			if c.Embedding.RateLimit == 0 {
				return ""
			}
			return strconv.FormatFloat(c.Embedding.RateLimit, 'g', -1, 64)
		},
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.rate_limit: %w", err)
			}
			if f < 0 {
				return fmt.Errorf("invalid value for embedding.rate_limit: must not be negative")
			}
			c.Embedding.RateLimit = f
			return nil
		},
	},
}
