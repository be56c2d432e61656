package oracle

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedEncoder memoizes embeddings of an inner encoder in a bounded LRU.
// Returned vectors are copies, so callers may modify them.
type CachedEncoder struct {
	inner Encoder
	cache *lru.Cache[string, Embedding]
}

// NewCachedEncoder wraps inner with an LRU of the given size.
func NewCachedEncoder(inner Encoder, size int) (*CachedEncoder, error) {
	cache, err := lru.New[string, Embedding](size)
	if err != nil {
		return nil, err
	}
	return &CachedEncoder{inner: inner, cache: cache}, nil
}

// ModelID implements Encoder.
func (c *CachedEncoder) ModelID() string { return c.inner.ModelID() }

// Embed implements Encoder.
func (c *CachedEncoder) Embed(ctx context.Context, text string) (Embedding, error) {
	if vec, ok := c.cache.Get(text); ok {
		return clone(vec), nil
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, clone(vec))
	return vec, nil
}

// Len returns the number of cached embeddings.
func (c *CachedEncoder) Len() int { return c.cache.Len() }

func clone(vec Embedding) Embedding {
	out := make(Embedding, len(vec))
	copy(out, vec)
	return out
}
