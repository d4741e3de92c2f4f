package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/giftsearch/internal/db"
	"github.com/kailas-cloud/giftsearch/internal/domain"
)

func TestEmbed_CacheMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	ce, ms := newTestCachedEmbedder(t, inner, Config{})

	var setKey string
	ms.setFn = func(_ context.Context, key string, _ []byte) error {
		setKey = key
		return nil
	}

	result, err := ce.Embed(context.Background(), "steam gift card")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.1 {
		t.Fatalf("unexpected vector: %v", result.Embedding)
	}
	if result.TotalTokens != 10 {
		t.Fatalf("expected TotalTokens=10, got %d", result.TotalTokens)
	}
	if !strings.HasPrefix(setKey, "giftsearch:emb_cache:") {
		t.Fatalf("expected cache put under emb_cache prefix, got %q", setKey)
	}
}

func TestEmbed_CacheMissWithTTL(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	ce, ms := newTestCachedEmbedder(t, inner, Config{TTL: time.Hour})

	var gotTTL time.Duration
	ms.setWithTTLFn = func(_ context.Context, _ string, _ []byte, ttl time.Duration) error {
		gotTTL = ttl
		return nil
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		t.Fatal("plain SET must not be used when a TTL is configured")
		return nil
	}

	if _, err := ce.Embed(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTTL != time.Hour {
		t.Fatalf("expected 1h TTL, got %v", gotTTL)
	}
}

func TestEmbed_CacheHit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	ce, ms := newTestCachedEmbedder(t, inner, Config{})

	cached := db.EncodeVector([]float32{0.4, 0.5, 0.6})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return cached, nil }

	result, err := ce.Embed(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.4 {
		t.Fatalf("expected cached vector, got: %v", result.Embedding)
	}
	if result.TotalTokens != 0 {
		t.Fatalf("expected TotalTokens=0 on cache hit, got %d", result.TotalTokens)
	}
	if inner.calls != 0 {
		t.Fatalf("inner embedder should not be called on hit, got %d calls", inner.calls)
	}
}

func TestEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: errors.New("provider down")}
	ce, ms := newTestCachedEmbedder(t, inner, Config{})
	ms.setFn = func(_ context.Context, _ string, _ []byte) error {
		t.Fatal("failed embedding must not be cached")
		return nil
	}

	if _, err := ce.Embed(context.Background(), "q"); err == nil {
		t.Fatal("expected error")
	}
}

func TestEmbed_StoreErrorsDegrade(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.7}}}
	ce, ms := newTestCachedEmbedder(t, inner, Config{})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return nil, errors.New("conn refused") }
	ms.setFn = func(_ context.Context, _ string, _ []byte) error { return errors.New("conn refused") }

	result, err := ce.Embed(context.Background(), "q")
	if err != nil {
		t.Fatalf("cache failures must not fail Embed: %v", err)
	}
	if result.Embedding[0] != 0.7 {
		t.Fatalf("unexpected vector: %v", result.Embedding)
	}
}

func TestEmbed_CorruptEntryIsMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.7}}}
	ce, ms := newTestCachedEmbedder(t, inner, Config{})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) { return []byte{1, 2, 3}, nil }

	if _, err := ce.Embed(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected fallback to inner embedder, got %d calls", inner.calls)
	}
}

func TestEmbed_CountsHitsAndMisses(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	ms := &mockKVStore{}
	ce := New(inner, ms, domain.NewKeyspace(""), Config{}, counter, zap.NewNop())

	if _, err := ce.Embed(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return db.EncodeVector([]float32{0.1}), nil
	}
	if _, err := ce.Embed(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss = %v, want 1", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 1 {
		t.Errorf("hit = %v, want 1", got)
	}
}

func TestEmbed_WrongDimensionsIsStale(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_stale_total"}, []string{"result"})
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: 3}}
	ms := &mockKVStore{
		getFn: func(_ context.Context, _ string) ([]byte, error) {
			return db.EncodeVector([]float32{0.9, 0.9, 0.9}), nil
		},
	}
	var rewritten []byte
	ms.setFn = func(_ context.Context, _ string, value []byte) error {
		rewritten = value
		return nil
	}
	ce := New(inner, ms, domain.NewKeyspace(""), Config{Dimensions: 2}, counter, zap.NewNop())

	result, err := ce.Embed(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || result.TotalTokens != 3 {
		t.Fatalf("expected re-embedding, calls=%d tokens=%d", inner.calls, result.TotalTokens)
	}
	if len(rewritten) != 8 {
		t.Errorf("expected fresh 2-dim entry to be cached, got %d bytes", len(rewritten))
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("stale")); got != 1 {
		t.Errorf("stale = %v, want 1", got)
	}
}
