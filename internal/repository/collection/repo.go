package collection

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/giftsearch/internal/db"
	"github.com/kailas-cloud/giftsearch/internal/domain"
	domcol "github.com/kailas-cloud/giftsearch/internal/domain/collection"
)

// store is the consumer interface for collections (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string, deleteDocs bool) error
	ListIndexes(ctx context.Context) ([]string, error)
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements usecase/collection.Repository on top of FT indexes.
// A collection exists exactly when its index exists.
type Repo struct {
	store store
	keys  domain.Keyspace
	hnsw  HNSWConfig
}

// New creates a collection repository.
func New(s store, keys domain.Keyspace) *Repo {
	return &Repo{store: s, keys: keys, hnsw: HNSWConfig{M: 16, EFConstruct: 200}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// List returns the names of collections that have an index, sorted.
func (r *Repo) List(ctx context.Context) ([]string, error) {
	indexes, err := r.store.ListIndexes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}

	prefix := r.keys.Prefix()
	names := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		name, ok := strings.CutPrefix(idx, prefix)
		if !ok {
			continue
		}
		name, ok = strings.CutSuffix(name, ":idx")
		if !ok || name == "" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether the collection's index is present.
func (r *Repo) Exists(ctx context.Context, name string) (bool, error) {
	idxName := r.keys.IndexName(name)
	ok, err := r.store.IndexExists(ctx, idxName)
	if err != nil {
		return false, fmt.Errorf("index info %s: %w", idxName, err)
	}
	return ok, nil
}

// Create declares the collection's index. Returns domain.ErrAlreadyExists if present.
func (r *Repo) Create(ctx context.Context, col domcol.Collection) error {
	def, err := buildIndex(r.keys, col, r.hnsw)
	if err != nil {
		return fmt.Errorf("build index: %w", errors.Join(domain.ErrInvalidSchema, err))
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

// Drop removes the collection's index together with its documents.
// Returns domain.ErrCollectionNotFound if the index is absent.
func (r *Repo) Drop(ctx context.Context, name string) error {
	idxName := r.keys.IndexName(name)
	if err := r.store.DropIndex(ctx, idxName, true); err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return domain.ErrCollectionNotFound
		}
		return fmt.Errorf("drop index %s: %w", idxName, err)
	}
	return nil
}
