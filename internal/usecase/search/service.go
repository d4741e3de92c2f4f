package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/giftsearch/internal/domain"
	"github.com/kailas-cloud/giftsearch/internal/domain/search/hit"
)

// Service executes the two-strategy search against a single collection.
type Service struct {
	repo    Repository
	timeout time.Duration
}

// New creates a search service. A positive timeout bounds every store round-trip.
func New(repo Repository, timeout time.Duration) *Service {
	return &Service{repo: repo, timeout: timeout}
}

// MultiSearch returns the raw exact-phrase and vector hit lists of one collection.
// A blank query fails with domain.ErrEmptyQuery before anything is sent.
// Any backend failure fails the whole call.
func (s *Service) MultiSearch(
	ctx context.Context, collectionName, query string, maxHits int,
) (hit.Candidates, error) {
	query, err := NormalizeQuery(query)
	if err != nil {
		return hit.Candidates{}, err
	}
	if maxHits <= 0 {
		return hit.Candidates{}, errors.New("max hits must be positive")
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	candidates, err := s.repo.MultiSearch(ctx, collectionName, query, maxHits)
	if err != nil {
		return hit.Candidates{}, fmt.Errorf("multi search %s: %w", collectionName, err)
	}
	return candidates, nil
}

// Search runs MultiSearch and merges the two lists into one ranked list of at most maxHits.
func (s *Service) Search(ctx context.Context, collectionName, query string, maxHits int) ([]hit.Hit, error) {
	candidates, err := s.MultiSearch(ctx, collectionName, query, maxHits)
	if err != nil {
		return nil, err
	}
	return merge(candidates, maxHits), nil
}

// NormalizeQuery trims the query and rejects a blank one with domain.ErrEmptyQuery.
func NormalizeQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", domain.ErrEmptyQuery
	}
	return q, nil
}
