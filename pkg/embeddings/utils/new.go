// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"

	"github.com/papercomputeco/faqrag/pkg/embeddings"
	"github.com/papercomputeco/faqrag/pkg/embeddings/hashing"
	"github.com/papercomputeco/faqrag/pkg/embeddings/ollama"
	"github.com/papercomputeco/faqrag/pkg/embeddings/openai"
	"github.com/papercomputeco/faqrag/pkg/embeddings/throttle"
)

// Supported embedding provider names.
const (
	ProviderHashing = "hashing"
	ProviderOllama  = "ollama"
	ProviderOpenAI  = "openai"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	Dimensions   uint

	// RateLimit caps embedding calls per second. Zero disables throttling.
	RateLimit float64
}

func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	var (
		e   embeddings.Embedder
		err error
	)

	switch o.ProviderType {
	case ProviderHashing, "":
		e, err = hashing.NewEmbedder(hashing.Config{
			Dimensions: o.Dimensions,
		})
	case ProviderOllama:
		e, err = ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL:    o.TargetURL,
			Model:      o.Model,
			Dimensions: o.Dimensions,
		})
	case ProviderOpenAI:
		e, err = openai.NewEmbedder(openai.EmbedderConfig{
			BaseURL:    o.TargetURL,
			Model:      o.Model,
			Dimensions: o.Dimensions,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
	if err != nil {
		return nil, err
	}

	if o.RateLimit > 0 {
		e = throttle.New(e, o.RateLimit, 1)
	}

	return e, nil
}
