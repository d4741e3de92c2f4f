// Package embedding holds provider-agnostic embedder decorators.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/giftsearch/internal/domain"
	"github.com/kailas-cloud/giftsearch/internal/metrics"
)

// Limiter throttles outgoing embedding requests. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// InstrumentedEmbedder throttles calls to a provider and logs their outcome.
// Request and token counters live in the transport layer.
type InstrumentedEmbedder struct {
	inner    domain.Embedder
	provider string
	limiter  Limiter
	log      *zap.Logger
}

// NewInstrumentedEmbedder wraps inner. A nil limiter disables throttling.
func NewInstrumentedEmbedder(
	inner domain.Embedder, provider, model string,
	limiter Limiter, logger *zap.Logger,
) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		limiter:  limiter,
		log:      logger.With(zap.String("provider", provider), zap.String("model", model)),
	}
}

// Embed takes a limiter slot and delegates. Running out of context while
// queued for a slot is reported as domain.ErrRateLimited.
func (e *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := e.acquire(ctx); err != nil {
		return domain.EmbeddingResult{}, err
	}

	start := time.Now()
	res, err := e.inner.Embed(ctx, text)
	took := time.Since(start)
	if err != nil {
		e.log.Error("Embedding request failed", zap.Duration("duration", took), zap.Error(err))
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	if ce := e.log.Check(zap.DebugLevel, "Embedding request completed"); ce != nil {
		ce.Write(
			zap.Duration("duration", took),
			zap.Int("dimensions", len(res.Embedding)),
			zap.Int("total_tokens", res.TotalTokens),
		)
	}
	return res, nil
}

func (e *InstrumentedEmbedder) acquire(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}

	start := time.Now()
	err := e.limiter.Wait(ctx)
	metrics.EmbeddingRateLimitWait.WithLabelValues(e.provider).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("rate limiter wait: %w", err)
	default:
		e.log.Warn("Embedding rate limit wait aborted", zap.Error(err))
		return fmt.Errorf("rate limiter wait: %v: %w", err, domain.ErrRateLimited)
	}
}
