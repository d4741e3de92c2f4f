package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/giftsearch/internal/config"
	"github.com/kailas-cloud/giftsearch/internal/db"
	"github.com/kailas-cloud/giftsearch/internal/domain"
	"github.com/kailas-cloud/giftsearch/internal/metrics"
	"github.com/kailas-cloud/giftsearch/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/giftsearch/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/giftsearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/giftsearch/internal/usecase/health"
)

// embedders are the document and query sides of one provider. Both share
// the provider client, its rate limiter and the vector cache.
type embedders struct {
	document domain.Embedder
	query    domain.Embedder
	health   healthuc.EmbeddingChecker
}

func newEmbedders(cfg config.EmbeddingConfig, store db.KVStore, keys domain.Keyspace, logger *zap.Logger) embedders {
	vec := cfg.Vectorizer
	prov := cfg.Providers[vec.Provider]

	provider := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     prov.APIKey,
		BaseURL:    prov.BaseURL,
		Model:      vec.Model,
		Dimensions: vec.Dimensions,
		Provider:   vec.Provider,
		Timeout:    time.Duration(prov.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	// Cache hits bypass the limiter; misses are throttled and counted.
	shared := embeddinguc.NewInstrumentedEmbedder(
		provider, vec.Provider, vec.Model,
		embeddinguc.NewLimiter(prov.RateLimit.RequestsPerSecond, prov.RateLimit.Burst),
		logger,
	)
	var cached domain.Embedder = shared
	if cfg.Cache.Enabled {
		cached = embcache.New(shared, store, keys, embcache.Config{
			TTL:        time.Duration(cfg.Cache.TTLSec) * time.Second,
			Dimensions: vec.Dimensions,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	logger.Info("Embedders created",
		zap.String("provider", vec.Provider),
		zap.String("model", vec.Model),
		zap.Int("dimensions", vec.Dimensions),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.Float64("rps", prov.RateLimit.RequestsPerSecond),
	)

	return embedders{
		document: withInstruction(cached, vec.DocumentInstruction),
		query:    withInstruction(cached, vec.QueryInstruction),
		health: probeFunc(func(ctx context.Context) error {
			if err := provider.HealthCheck(ctx); err != nil {
				return fmt.Errorf("embedding health check: %w", err)
			}
			return nil
		}),
	}
}

// withInstruction wraps outside the cache so cache keys carry the prefix.
func withInstruction(e domain.Embedder, instruction string) domain.Embedder {
	if instruction == "" {
		return e
	}
	return domain.NewInstructionEmbedder(e, instruction)
}

type probeFunc func(ctx context.Context) error

func (f probeFunc) HealthCheck(ctx context.Context) error { return f(ctx) }
