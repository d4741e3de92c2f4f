package collection

import (
	"context"

	domcol "github.com/kailas-cloud/giftsearch/internal/domain/collection"
)

// Repository defines the storage contract for collections.
type Repository interface {
	List(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, col domcol.Collection) error
	Drop(ctx context.Context, name string) error
}
