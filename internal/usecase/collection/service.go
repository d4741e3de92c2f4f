package collection

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/giftsearch/internal/domain"
	domcol "github.com/kailas-cloud/giftsearch/internal/domain/collection"
)

// Service owns the lifecycle of the per-region collections.
type Service struct {
	repo      Repository
	names     []string
	vectorDim int
	logger    *zap.Logger
}

// New creates a collection service for the configured collection names.
func New(repo Repository, names []string, vectorDim int, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		names:     slices.Clone(names),
		vectorDim: vectorDim,
		logger:    logger,
	}
}

// Names returns the configured collection names in configuration order.
func (s *Service) Names() []string {
	return slices.Clone(s.names)
}

// Resolve checks that name is a configured collection.
func (s *Service) Resolve(name string) error {
	if !slices.Contains(s.names, name) {
		return fmt.Errorf("%q: %w", name, domain.ErrUnknownCollection)
	}
	return nil
}

// Ensure declares the collection's schema if it is absent and is a no-op otherwise.
// Only backend failures are returned.
func (s *Service) Ensure(ctx context.Context, name string) error {
	col, err := domcol.New(name, s.vectorDim)
	if err != nil {
		return fmt.Errorf("validate collection: %w: %w", domain.ErrInvalidSchema, err)
	}

	exists, err := s.repo.Exists(ctx, name)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", name, err)
	}
	if exists {
		s.logger.Debug("Collection already exists", zap.String("collection", name))
		return nil
	}

	if err := s.repo.Create(ctx, col); err != nil {
		// Lost a race with a concurrent Ensure.
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil
		}
		return fmt.Errorf("create collection %s: %w", name, err)
	}

	s.logger.Info("Collection created", zap.String("collection", name), zap.Int("vector_dim", s.vectorDim))
	return nil
}

// ResetAll drops every listed collection that exists, documents included.
// Missing collections are skipped silently; other failures are logged and
// do not stop the reset. Returns the number of collections dropped.
func (s *Service) ResetAll(ctx context.Context, names []string) int {
	existing, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list collections for reset", zap.Error(err))
		return 0
	}

	dropped := 0
	for _, name := range names {
		if !slices.Contains(existing, name) {
			continue
		}
		if err := s.repo.Drop(ctx, name); err != nil {
			if !errors.Is(err, domain.ErrCollectionNotFound) {
				s.logger.Error("Failed to drop collection", zap.String("collection", name), zap.Error(err))
			}
			continue
		}
		dropped++
		s.logger.Info("Collection dropped", zap.String("collection", name))
	}
	return dropped
}

// Existing returns which of the configured collections currently have an index.
func (s *Service) Existing(ctx context.Context) (map[string]bool, error) {
	present, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	out := make(map[string]bool, len(s.names))
	for _, name := range s.names {
		out[name] = slices.Contains(present, name)
	}
	return out, nil
}
