package chi

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/giftsearch/internal/domain"
	domcol "github.com/kailas-cloud/giftsearch/internal/domain/collection"
	"github.com/kailas-cloud/giftsearch/internal/domain/document"
	"github.com/kailas-cloud/giftsearch/internal/domain/search/hit"
	healthuc "github.com/kailas-cloud/giftsearch/internal/usecase/health"
	"github.com/kailas-cloud/giftsearch/internal/usecase/preview"
)

type mockAggregator struct {
	searchAllFn       func(ctx context.Context, query string, maxHits int, exclude ...string) ([]hit.Hit, error)
	searchSpilloverFn func(ctx context.Context, query, collectionName string) ([]hit.Hit, error)
}

func (m *mockAggregator) SearchAll(ctx context.Context, query string, maxHits int, exclude ...string) ([]hit.Hit, error) {
	if m.searchAllFn != nil {
		return m.searchAllFn(ctx, query, maxHits, exclude...)
	}
	return nil, nil
}

func (m *mockAggregator) SearchWithSpillover(ctx context.Context, query, collectionName string) ([]hit.Hit, error) {
	if m.searchSpilloverFn != nil {
		return m.searchSpilloverFn(ctx, query, collectionName)
	}
	return nil, nil
}

type mockCollections struct {
	names      []string
	existingFn func(ctx context.Context) (map[string]bool, error)
}

func (m *mockCollections) Names() []string { return slices.Clone(m.names) }

func (m *mockCollections) Resolve(name string) error {
	if !slices.Contains(m.names, name) {
		return fmt.Errorf("%q: %w", name, domain.ErrUnknownCollection)
	}
	return nil
}

func (m *mockCollections) Existing(ctx context.Context) (map[string]bool, error) {
	if m.existingFn != nil {
		return m.existingFn(ctx)
	}
	out := make(map[string]bool, len(m.names))
	for _, n := range m.names {
		out[n] = true
	}
	return out, nil
}

type mockIndexer struct {
	indexFn func(ctx context.Context, root, name string) (int, error)
}

func (m *mockIndexer) IndexCollection(ctx context.Context, root, name string) (int, error) {
	if m.indexFn != nil {
		return m.indexFn(ctx, root, name)
	}
	return 0, nil
}

func (m *mockIndexer) Status(name string) (domcol.Status, error) {
	return domcol.Status{Collection: name, State: domcol.StateDone}, nil
}

func (m *mockIndexer) Statuses(names []string) []domcol.Status {
	out := make([]domcol.Status, len(names))
	for i, n := range names {
		out[i] = domcol.Status{Collection: n, State: domcol.StateIdle}
	}
	return out
}

// passthroughFormatter keeps only identity and scores.
type passthroughFormatter struct{}

func (passthroughFormatter) Format(hits []hit.Hit) []preview.Result {
	out := make([]preview.Result, len(hits))
	for i, h := range hits {
		out[i] = preview.Result{
			Collection:       h.Collection(),
			Filename:         h.Document().Filename(),
			TextMatchScore:   h.TextMatchScore(),
			VectorMatchScore: h.VectorMatchScore(),
		}
	}
	return out
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

type testDeps struct {
	agg    *mockAggregator
	idx    *mockIndexer
	health *mockHealth
}

func newTestRouter(d testDeps) chi.Router {
	if d.agg == nil {
		d.agg = &mockAggregator{}
	}
	if d.idx == nil {
		d.idx = &mockIndexer{}
	}
	if d.health == nil {
		d.health = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}
	srv := NewServer(
		d.agg,
		&mockCollections{names: []string{"GB", "BE", "MX"}},
		d.idx,
		passthroughFormatter{},
		d.health,
		Config{DocumentsPath: "/docs", MaxHits: 10},
		zap.NewNop(),
	)
	r := chi.NewRouter()
	srv.Register(r)
	return r
}

func testHit(col, name string, text, vector float64) hit.Hit {
	rec := document.Reconstruct("/docs/"+col+"/"+name, name, "/docs/"+col+"/"+name, name, len(name))
	return hit.New(col, rec, text, vector)
}
