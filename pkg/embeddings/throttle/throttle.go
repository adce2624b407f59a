// Package throttle wraps an Embedder with a token-bucket rate limit so remote
// embedding providers are not flooded while a corpus is indexed.
package throttle

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/papercomputeco/faqrag/pkg/embeddings"
)

// Embedder delegates to an inner Embedder once the limiter grants a token.
type Embedder struct {
	inner   embeddings.Embedder
	limiter *rate.Limiter
}

// New wraps inner so that at most perSecond calls start each second, with
// bursts of up to burst calls. A burst below 1 is raised to 1.
func New(inner embeddings.Embedder, perSecond float64, burst int) *Embedder {
	if burst < 1 {
		burst = 1
	}
	return &Embedder{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Embed waits for a token, then embeds text with the inner Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for embed rate limit: %w", err)
	}
	return e.inner.Embed(ctx, text)
}

// Close closes the inner Embedder.
func (e *Embedder) Close() error {
	return e.inner.Close()
}

var _ embeddings.Embedder = (*Embedder)(nil)
