package search

import (
	"context"

	"github.com/kailas-cloud/giftsearch/internal/domain/search/hit"
)

// Repository defines the storage contract for the dual-strategy search.
type Repository interface {
	MultiSearch(ctx context.Context, collectionName, query string, maxHits int) (hit.Candidates, error)
}
