package aggregate

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/kailas-cloud/giftsearch/internal/domain"
	"github.com/kailas-cloud/giftsearch/internal/domain/document"
	"github.com/kailas-cloud/giftsearch/internal/domain/search/hit"
)

type mockSearcher struct {
	mu       sync.Mutex
	searchFn func(ctx context.Context, collectionName, query string, maxHits int) ([]hit.Hit, error)
	called   []string
}

func (m *mockSearcher) Search(ctx context.Context, collectionName, query string, maxHits int) ([]hit.Hit, error) {
	m.mu.Lock()
	m.called = append(m.called, collectionName)
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(ctx, collectionName, query, maxHits)
	}
	return nil, nil
}

func (m *mockSearcher) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.called)
	slices.Sort(out)
	return out
}

type staticCollections []string

func (c staticCollections) Names() []string { return slices.Clone(c) }

func (c staticCollections) Resolve(name string) error {
	if !slices.Contains(c, name) {
		return fmt.Errorf("%q: %w", name, domain.ErrUnknownCollection)
	}
	return nil
}

var regions = staticCollections{"GB", "BE", "MX"}

func rec(id string) document.Record {
	return document.Reconstruct(id, id, "/docs/"+id, "text of "+id, 10)
}

func lex(col, id string, score float64) hit.Hit {
	return hit.Lexical(col, rec(id), score)
}

func vec(col, id string, distance float64) hit.Hit {
	return hit.Vector(col, rec(id), distance)
}

func ids(hits []hit.Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.ID()
	}
	return out
}
