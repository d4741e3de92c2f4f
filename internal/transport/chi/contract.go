package chi

import (
	"context"

	domcol "github.com/kailas-cloud/giftsearch/internal/domain/collection"
	"github.com/kailas-cloud/giftsearch/internal/domain/search/hit"
	healthuc "github.com/kailas-cloud/giftsearch/internal/usecase/health"
	"github.com/kailas-cloud/giftsearch/internal/usecase/preview"
)

// Aggregator runs searches over one or all collections.
type Aggregator interface {
	SearchAll(ctx context.Context, query string, maxHits int, exclude ...string) ([]hit.Hit, error)
	SearchWithSpillover(ctx context.Context, query, collectionName string) ([]hit.Hit, error)
}

// Collections exposes the configured collections.
type Collections interface {
	Names() []string
	Resolve(name string) error
	Existing(ctx context.Context) (map[string]bool, error)
}

// Indexer re-indexes collections and reports progress.
type Indexer interface {
	IndexCollection(ctx context.Context, root, name string) (int, error)
	Status(name string) (domcol.Status, error)
	Statuses(names []string) []domcol.Status
}

// Formatter turns hits into response results.
type Formatter interface {
	Format(hits []hit.Hit) []preview.Result
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
