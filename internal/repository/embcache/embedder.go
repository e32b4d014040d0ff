// Package embcache decorates an Embedder with a key-value cache so repeated
// fragment texts and queries do not re-invoke the embedding provider.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hirelens/hirelens/internal/db"
	"github.com/hirelens/hirelens/internal/domain"
)

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedEmbedder caches embedding vectors in a key-value store. Entries are
// keyed by model and text digest, so switching the embedding model never
// serves vectors computed by the previous one, and expire after ttl so the
// cache cannot grow without bound.
type CachedEmbedder struct {
	inner  domain.Embedder
	store  store
	model  string
	ttl    time.Duration
	hits   *prometheus.CounterVec
	logger *zap.Logger
}

// New creates a caching decorator. hits is a counter vec with label
// "result" ("hit"/"miss"); nil disables counting.
func New(
	inner domain.Embedder,
	s store,
	model string,
	ttl time.Duration,
	hits *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	return &CachedEmbedder{
		inner:  inner,
		store:  s,
		model:  model,
		ttl:    ttl,
		hits:   hits,
		logger: logger,
	}
}

// Embed returns a cached embedding or calls the inner embedder. A hit
// reports zero token usage; a miss reports the inner result as-is. Cache
// failures never fail the embed, the decorator degrades to pass-through.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	if vec, ok := c.lookup(ctx, key); ok {
		c.count("hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	c.count("miss")

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	if err := c.store.SetWithTTL(ctx, key, encodeVector(result.Embedding), c.ttl); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

// cacheKey derives hirelens:emb_cache:{model}:{sha256(text)}.
func (c *CachedEmbedder) cacheKey(text string) string {
	return fmt.Sprintf("%semb_cache:%s:%x", domain.KeyPrefix, c.model, sha256.Sum256([]byte(text)))
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read embedding cache", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	vec, err := decodeVector(data)
	if err != nil {
		// A corrupt or truncated entry expires on its own; treat as miss.
		c.logger.Warn("Discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (c *CachedEmbedder) count(result string) {
	if c.hits != nil {
		c.hits.WithLabelValues(result).Inc()
	}
}

// encodeVector packs the vector as little-endian float32 bits, the same
// layout the vector index stores.
func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("cache entry has %d bytes, not a vector", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
