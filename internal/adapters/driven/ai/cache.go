package ai

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/logger"
)

// Ensure CachedEmbedding implements the interface.
var _ driven.EmbeddingService = (*CachedEmbedding)(nil)

// CachedEmbedding memoises embeddings across sessions. Concurrent requests
// for the same uncached text share one backend call.
type CachedEmbedding struct {
	driven.EmbeddingService
	cache *gocache.Cache
	group singleflight.Group
}

// NewCachedEmbedding wraps svc with a cache whose entries live for ttl.
func NewCachedEmbedding(svc driven.EmbeddingService, ttl time.Duration) *CachedEmbedding {
	return &CachedEmbedding{
		EmbeddingService: svc,
		cache:            gocache.New(ttl, 2*ttl),
	}
}

func (c *CachedEmbedding) key(text string) string {
	return c.EmbeddingService.ModelName() + "\x00" + text
}

func (c *CachedEmbedding) lookup(text string) ([]float32, bool) {
	v, ok := c.cache.Get(c.key(text))
	if !ok {
		return nil, false
	}
	return v.([]float32), true
}

// Embed returns the cached embedding or computes it once. The shared call is
// detached from any one caller's cancellation; each caller stops waiting when
// its own ctx is done.
func (c *CachedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.lookup(text); ok {
		return vec, nil
	}

	key := c.key(text)
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		vec, err := c.EmbeddingService.Embed(detached, text)
		if err != nil {
			return nil, err
		}
		c.cache.SetDefault(key, vec)
		return vec, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]float32), nil
	}
}

// EmbedBatch serves cached texts from memory and sends the rest to the
// backend in one batch.
func (c *CachedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var positions []int
	for i, t := range texts {
		if vec, ok := c.lookup(t); ok {
			out[i] = vec
			continue
		}
		missing = append(missing, t)
		positions = append(positions, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := c.EmbeddingService.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("embedding cache: got %d embeddings for %d inputs", len(vecs), len(missing))
	}
	for j, vec := range vecs {
		out[positions[j]] = vec
		c.cache.SetDefault(c.key(missing[j]), vec)
	}
	return out, nil
}

// Len returns the number of cached embeddings, expired ones included.
func (c *CachedEmbedding) Len() int {
	return c.cache.ItemCount()
}

// Flush drops every cached embedding.
func (c *CachedEmbedding) Flush() {
	logger.Debug("Flushing %d cached embeddings", c.cache.ItemCount())
	c.cache.Flush()
}
