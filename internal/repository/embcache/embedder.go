package embcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/giftsearch/internal/db"
	"github.com/kailas-cloud/giftsearch/internal/domain"
)

const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultStale = "stale"
)

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config tunes the cache.
type Config struct {
	// TTL of zero keeps entries forever.
	TTL time.Duration
	// Dimensions, when set, rejects cached vectors of any other length.
	// Entries written before a model change are then re-embedded.
	Dimensions int
}

// CachedEmbedder memoizes embeddings under a hash of the input text.
// Store failures are logged and never fail Embed.
type CachedEmbedder struct {
	inner   domain.Embedder
	store   store
	keys    domain.Keyspace
	cfg     Config
	results *prometheus.CounterVec
	logger  *zap.Logger
}

// New wraps inner. results counts lookups by outcome label "result"; nil disables counting.
func New(
	inner domain.Embedder,
	s store,
	keys domain.Keyspace,
	cfg Config,
	results *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	return &CachedEmbedder{
		inner:   inner,
		store:   s,
		keys:    keys,
		cfg:     cfg,
		results: results,
		logger:  logger,
	}
}

// Embed returns the cached vector for text, or embeds and caches it.
// A hit reports zero tokens.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.keys.EmbeddingCacheKey(text)

	vec, outcome := c.lookup(ctx, key)
	c.count(outcome)
	if outcome == resultHit {
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	c.save(ctx, key, result.Embedding)
	return result, nil
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, string) {
	data, err := c.store.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return nil, resultMiss
	case err != nil:
		c.logger.Warn("Embedding cache read failed", zap.String("key", key), zap.Error(err))
		return nil, resultMiss
	case len(data) == 0:
		return nil, resultMiss
	}

	vec, err := db.DecodeVector(data)
	if err != nil {
		c.logger.Warn("Corrupt embedding cache entry", zap.String("key", key), zap.Error(err))
		return nil, resultStale
	}
	if c.cfg.Dimensions > 0 && len(vec) != c.cfg.Dimensions {
		c.logger.Debug("Embedding cache entry has wrong dimensions",
			zap.String("key", key),
			zap.Int("got", len(vec)),
			zap.Int("want", c.cfg.Dimensions),
		)
		return nil, resultStale
	}
	return vec, resultHit
}

func (c *CachedEmbedder) save(ctx context.Context, key string, vec []float32) {
	data := db.EncodeVector(vec)

	var err error
	if c.cfg.TTL > 0 {
		err = c.store.SetWithTTL(ctx, key, data, c.cfg.TTL)
	} else {
		err = c.store.Set(ctx, key, data)
	}
	if err != nil {
		c.logger.Warn("Embedding cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedEmbedder) count(outcome string) {
	if c.results != nil {
		c.results.WithLabelValues(outcome).Inc()
	}
}
