package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/giftsearch/internal/domain"
	domdoc "github.com/kailas-cloud/giftsearch/internal/domain/document"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetFn   func(ctx context.Context, key string, fields map[string]string) error
	existsFn func(ctx context.Context, key string) (bool, error)
}

func (m *mockStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if m.hsetFn != nil {
		return m.hsetFn(ctx, key, fields)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: 3}, nil
}

var testKeys = domain.NewKeyspace("giftsearch:")

func newTestRepo(t *testing.T) (*Repo, *mockStore, *mockEmbedder) {
	t.Helper()
	ms := &mockStore{}
	me := &mockEmbedder{}
	return New(ms, me, testKeys), ms, me
}

func testRecord(t *testing.T) domdoc.Record {
	t.Helper()
	rec, err := domdoc.NewRecord("bitrefill_keywords/GB/steam-uk", "steam gift card")
	if err != nil {
		t.Fatalf("create test record: %v", err)
	}
	return rec
}
