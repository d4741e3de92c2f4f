package indexer

import (
	"context"

	domdoc "github.com/kailas-cloud/giftsearch/internal/domain/document"
)

// CollectionManager declares collection schemas ahead of writes.
type CollectionManager interface {
	Resolve(name string) error
	Ensure(ctx context.Context, name string) error
}

// DocumentWriter stores one document; returns true if it was not stored before.
type DocumentWriter interface {
	Insert(ctx context.Context, collectionName string, rec domdoc.Record) (bool, error)
}

// Extractor turns a file into plain text. It never fails; unreadable files yield "".
type Extractor interface {
	Extract(path string) string
}
