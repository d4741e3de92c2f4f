package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/giftsearch/internal/db"
	"github.com/kailas-cloud/giftsearch/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchMultiFn func(ctx context.Context, text *db.TextQuery, knn *db.KNNQuery) (*db.MultiSearchResult, error)
}

func (m *mockStore) SearchMulti(ctx context.Context, text *db.TextQuery, knn *db.KNNQuery) (*db.MultiSearchResult, error) {
	if m.searchMultiFn != nil {
		return m.searchMultiFn(ctx, text, knn)
	}
	return &db.MultiSearchResult{Text: &db.SearchResult{}, KNN: &db.SearchResult{}}, nil
}

type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: testVector(), TotalTokens: 2}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore, *mockEmbedder) {
	t.Helper()
	ms := &mockStore{}
	me := &mockEmbedder{}
	return New(ms, me, domain.NewKeyspace("giftsearch:")), ms, me
}

func testVector() []float32 {
	vec := make([]float32, 4)
	for i := range vec {
		vec[i] = 0.1
	}
	return vec
}

func entry(id, text string, score float64) db.SearchEntry {
	return db.SearchEntry{
		Key:   "giftsearch:GB:doc:" + id,
		Score: score,
		Fields: map[string]string{
			"document_id": "bitrefill_keywords/GB/" + id,
			"filename":    id,
			"path":        "bitrefill_keywords/GB/" + id,
			"text":        text,
			"text_length": "9",
		},
	}
}
