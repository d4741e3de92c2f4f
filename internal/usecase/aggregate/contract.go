package aggregate

import (
	"context"

	"github.com/kailas-cloud/giftsearch/internal/domain/search/hit"
)

// Searcher runs the merged two-strategy search against one collection.
type Searcher interface {
	Search(ctx context.Context, collectionName, query string, maxHits int) ([]hit.Hit, error)
}

// Collections exposes the set of known collections.
type Collections interface {
	Names() []string
	Resolve(name string) error
}
