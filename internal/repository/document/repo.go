package document

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/giftsearch/internal/domain"
	domdoc "github.com/kailas-cloud/giftsearch/internal/domain/document"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Repo implements usecase/indexer.DocumentWriter.
// Documents are embedded here, at write time, so callers only deal in text.
type Repo struct {
	store    store
	embedder domain.Embedder
	keys     domain.Keyspace
}

// New creates a document repository.
func New(s store, embedder domain.Embedder, keys domain.Keyspace) *Repo {
	return &Repo{store: s, embedder: embedder, keys: keys}
}

// Insert embeds the record text and writes the document hash.
// The key is derived from the document ID, so writing the same ID twice
// replaces the earlier document. Returns true if the document was new.
func (r *Repo) Insert(ctx context.Context, collectionName string, rec domdoc.Record) (bool, error) {
	emb, err := r.embedder.Embed(ctx, rec.Text())
	if err != nil {
		return false, fmt.Errorf("embed document %s: %w", rec.ID(), err)
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)

	key := r.keys.DocKey(collectionName, rec.ID())
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}

	if err := r.store.HSet(ctx, key, buildHashFields(rec, emb.Embedding)); err != nil {
		return false, fmt.Errorf("hset %s: %w", key, err)
	}

	return !exists, nil
}
