package collection

import (
	"context"
	"testing"

	"github.com/kailas-cloud/giftsearch/internal/db"
	"github.com/kailas-cloud/giftsearch/internal/domain"
	domcol "github.com/kailas-cloud/giftsearch/internal/domain/collection"
)

const testVectorDim = 1024

// mockStore implements the consumer interface for tests.
type mockStore struct {
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn   func(ctx context.Context, name string, deleteDocs bool) error
	listIndexesFn func(ctx context.Context) ([]string, error)
	indexExistsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string, deleteDocs bool) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name, deleteDocs)
	}
	return nil
}

func (m *mockStore) ListIndexes(ctx context.Context) ([]string, error) {
	if m.listIndexesFn != nil {
		return m.listIndexesFn(ctx)
	}
	return nil, nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, domain.NewKeyspace("giftsearch:")), ms
}

func testCollection(t *testing.T, name string) domcol.Collection {
	t.Helper()
	col, err := domcol.New(name, testVectorDim)
	if err != nil {
		t.Fatalf("create test collection: %v", err)
	}
	return col
}
