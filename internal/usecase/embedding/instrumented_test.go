package embedding

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/giftsearch/internal/domain"
	"github.com/kailas-cloud/giftsearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

type mockLimiter struct {
	waitFn func(ctx context.Context) error
	waits  int
}

func (m *mockLimiter) Wait(ctx context.Context) error {
	m.waits++
	if m.waitFn != nil {
		return m.waitFn(ctx)
	}
	return nil
}

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: 5}}
	lim := &mockLimiter{}
	emb := NewInstrumentedEmbedder(inner, "test", "model", lim, zap.NewNop())

	res, err := emb.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalTokens != 5 || len(res.Embedding) != 2 {
		t.Errorf("unexpected result: %+v", res)
	}
	if lim.waits != 1 {
		t.Errorf("expected one limiter wait, got %d", lim.waits)
	}
}

func TestInstrumentedEmbedder_NilLimiter(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	emb := NewInstrumentedEmbedder(inner, "test", "model", nil, zap.NewNop())

	if _, err := emb.Embed(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
}

func TestInstrumentedEmbedder_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	emb := NewInstrumentedEmbedder(inner, "test", "model", nil, zap.NewNop())

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestInstrumentedEmbedder_WaitExceedsDeadline(t *testing.T) {
	inner := &mockEmbedder{}
	lim := &mockLimiter{waitFn: func(_ context.Context) error {
		return errors.New("rate: Wait(n=1) would exceed context deadline")
	}}
	emb := NewInstrumentedEmbedder(inner, "test", "model", lim, zap.NewNop())

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if inner.calls != 0 {
		t.Error("inner embedder must not be called after a failed wait")
	}
}

func TestInstrumentedEmbedder_WaitCanceled(t *testing.T) {
	lim := &mockLimiter{waitFn: func(ctx context.Context) error { return ctx.Err() }}
	emb := NewInstrumentedEmbedder(&mockEmbedder{}, "test", "model", lim, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := emb.Embed(ctx, "hello")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, domain.ErrRateLimited) {
		t.Error("cancellation must not be reported as rate limiting")
	}
}

func TestNewLimiter(t *testing.T) {
	if NewLimiter(0, 5) != nil {
		t.Error("zero rate should disable limiting")
	}

	lim, ok := NewLimiter(1, 0).(*rate.Limiter)
	if !ok || lim == nil {
		t.Fatal("expected *rate.Limiter")
	}
	if lim.Burst() != 1 {
		t.Errorf("burst = %d, want 1", lim.Burst())
	}

	// The single burst token is available immediately; the next one is not.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := lim.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	if err := lim.Wait(ctx); err == nil {
		t.Error("second wait should not fit in the deadline at 1 rps")
	}
}

func TestInstrumentedEmbedder_WithRealLimiter(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	emb := NewInstrumentedEmbedder(inner, "test", "model", NewLimiter(1, 1), zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := emb.Embed(ctx, "a"); err != nil {
		t.Fatalf("first embed: %v", err)
	}
	if _, err := emb.Embed(ctx, "b"); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited on second embed, got %v", err)
	}
}
