// Package oracle provides text embeddings and the semantic similarity
// used to compare candidate phrases with the vocabulary.
package oracle

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Embedding is a dense vector representation of a phrase.
type Embedding []float64

// Encoder turns text into an embedding.
type Encoder interface {
	Embed(ctx context.Context, text string) (Embedding, error)
	ModelID() string
}

// Oracle embeds text and scores pairs of embeddings in [0,1].
type Oracle interface {
	Encoder
	Similarity(a, b Embedding) float64
}

// EmbedAll embeds texts in order, stopping at the first error.
func EmbedAll(ctx context.Context, enc Encoder, texts []string) ([]Embedding, error) {
	out := make([]Embedding, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := enc.Embed(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("embed %q: %w", t, err)
		}
		out[i] = vec
	}
	return out, nil
}

// Cosine returns the cosine similarity of a and b clipped to [0,1].
// Mismatched or zero-length vectors score 0.
func Cosine(a, b Embedding) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	sim := floats.Dot(a, b) / (na * nb)
	switch {
	case sim < 0:
		return 0
	case sim > 1:
		return 1
	}
	return sim
}

// CosineOracle pairs any encoder with cosine similarity.
type CosineOracle struct {
	Encoder
}

// WithCosine wraps an encoder into an Oracle.
func WithCosine(enc Encoder) *CosineOracle {
	return &CosineOracle{Encoder: enc}
}

// Similarity implements Oracle.
func (o *CosineOracle) Similarity(a, b Embedding) float64 {
	return Cosine(a, b)
}
