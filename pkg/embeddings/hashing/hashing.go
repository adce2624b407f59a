// Package hashing implements a deterministic, offline embedder based on the
// hashing trick. Each lower-cased word and each adjacent word pair is hashed
// into a signed bucket; the resulting vector is L2-normalized.
// Identical text always maps to an identical vector.
package hashing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/papercomputeco/faqrag/pkg/embeddings"
	"github.com/papercomputeco/faqrag/pkg/vector"
)

// DefaultDimensions matches the output size of all-MiniLM-L6-v2.
const DefaultDimensions = 384

// Config holds configuration for the hashing embedder.
type Config struct {
	// Dimensions is the vector length. Defaults to DefaultDimensions if zero.
	Dimensions uint
}

// Embedder maps text to a fixed-length feature-hashed vector.
type Embedder struct {
	dims int
}

// NewEmbedder creates a hashing embedder.
func NewEmbedder(c Config) (*Embedder, error) {
	dims := c.Dimensions
	if dims == 0 {
		dims = DefaultDimensions
	}
	return &Embedder{dims: int(dims)}, nil
}

// Dimensions returns the length of the produced vectors.
func (e *Embedder) Dimensions() int {
	return e.dims
}

// Embed converts text into a normalized hashed vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrEmbedding, err)
	}

	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: text has no tokens", vector.ErrEmbedding)
	}

	acc := make([]float64, e.dims)
	add := func(feature string) {
		h := xxhash.Sum64String(feature)
		idx := h % uint64(e.dims)
		if h>>63 == 1 {
			acc[idx]--
		} else {
			acc[idx]++
		}
	}

	for i, tok := range tokens {
		add(tok)
		if i > 0 {
			add(tokens[i-1] + " " + tok)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	if norm == 0 {
		// Every feature cancelled out; fall back to the unsigned count of
		// the first token so the vector is never all zeros.
		acc[xxhash.Sum64String(tokens[0])%uint64(e.dims)] = 1
		norm = 1
	}
	norm = math.Sqrt(norm)

	out := make([]float32, e.dims)
	for i, v := range acc {
		out[i] = float32(v / norm)
	}
	return out, nil
}

// Close is a no-op.
func (e *Embedder) Close() error {
	return nil
}

// Tokenize lower-cases text and splits it on anything that is not a letter
// or a digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

var _ embeddings.Embedder = (*Embedder)(nil)
