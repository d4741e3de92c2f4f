package aggregate

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/giftsearch/internal/domain/search/hit"
	"github.com/kailas-cloud/giftsearch/internal/logger"
	"github.com/kailas-cloud/giftsearch/internal/metrics"
	"github.com/kailas-cloud/giftsearch/internal/usecase/search"
)

// Search modes, also used as metric labels.
const (
	ModeSingle    = "single"
	ModeAll       = "all"
	ModeSpillover = "spillover"
)

// Config holds the result budgets.
type Config struct {
	MaxHits         int // default result count and per-collection cap in SearchAll
	PrimaryBudget   int
	SpilloverBudget int
	FanoutWorkers   int // collections searched concurrently; <= 0 means all at once
}

// DefaultConfig returns the budgets used when none are configured.
func DefaultConfig() Config {
	return Config{MaxHits: 10, PrimaryBudget: 8, SpilloverBudget: 2}
}

// Service fans a query out over collections and ranks the combined hits.
type Service struct {
	searcher    Searcher
	collections Collections
	cfg         Config
	logger      *zap.Logger
}

// New creates an aggregator. Non-positive MaxHits and PrimaryBudget fall back
// to DefaultConfig values; a zero SpilloverBudget disables spillover.
func New(searcher Searcher, collections Collections, cfg Config, logger *zap.Logger) *Service {
	def := DefaultConfig()
	if cfg.MaxHits <= 0 {
		cfg.MaxHits = def.MaxHits
	}
	if cfg.PrimaryBudget <= 0 {
		cfg.PrimaryBudget = def.PrimaryBudget
	}
	cfg.SpilloverBudget = max(cfg.SpilloverBudget, 0)
	return &Service{searcher: searcher, collections: collections, cfg: cfg, logger: logger}
}

// Config returns the effective budgets.
func (s *Service) Config() Config { return s.cfg }

// SearchCollection ranks the hits of exactly one collection.
func (s *Service) SearchCollection(ctx context.Context, query, collectionName string, maxHits int) ([]hit.Hit, error) {
	start := time.Now()
	hits, err := s.searchCollection(ctx, query, collectionName, maxHits)
	observe(ModeSingle, start, err)
	return hits, err
}

func (s *Service) searchCollection(ctx context.Context, query, collectionName string, maxHits int) ([]hit.Hit, error) {
	query, err := search.NormalizeQuery(query)
	if err != nil {
		return nil, err
	}
	if err := s.collections.Resolve(collectionName); err != nil {
		return nil, err
	}
	if maxHits <= 0 {
		maxHits = s.cfg.MaxHits
	}
	return s.searcher.Search(ctx, collectionName, query, maxHits)
}

// SearchAll searches every known collection except the excluded ones and
// returns at most maxHits hits in global rank order. A failing collection is
// logged and contributes no hits.
func (s *Service) SearchAll(ctx context.Context, query string, maxHits int, exclude ...string) ([]hit.Hit, error) {
	start := time.Now()
	hits, err := s.searchAll(ctx, query, maxHits, exclude)
	observe(ModeAll, start, err)
	return hits, err
}

func (s *Service) searchAll(ctx context.Context, query string, maxHits int, exclude []string) ([]hit.Hit, error) {
	query, err := search.NormalizeQuery(query)
	if err != nil {
		return nil, err
	}
	if maxHits <= 0 {
		maxHits = s.cfg.MaxHits
	}
	perCollection := max(maxHits, s.cfg.MaxHits)

	names := slices.DeleteFunc(s.collections.Names(), func(n string) bool {
		return slices.Contains(exclude, n)
	})

	log := logger.FromContextOr(ctx, s.logger)
	results := make([][]hit.Hit, len(names))
	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.FanoutWorkers > 0 {
		g.SetLimit(s.cfg.FanoutWorkers)
	}
	for i, name := range names {
		g.Go(func() error {
			hits, err := s.searcher.Search(gctx, name, query, perCollection)
			if err != nil {
				metrics.CollectionSearchErrorsTotal.WithLabelValues(name).Inc()
				log.Error("Collection search failed",
					zap.String("collection", name),
					zap.Error(err),
				)
				return nil
			}
			results[i] = hits
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search all: %w", err)
	}

	var all []hit.Hit
	for _, hits := range results {
		all = append(all, hits...)
	}
	hit.Sort(all)
	return hit.Truncate(all, maxHits), nil
}

// SearchWithSpillover returns up to PrimaryBudget hits of the named collection
// followed by up to SpilloverBudget hits from every other collection. The two
// groups are not ranked against each other. A failure of the named collection
// fails the call; spillover failures only shrink the spillover group.
func (s *Service) SearchWithSpillover(ctx context.Context, query, collectionName string) ([]hit.Hit, error) {
	start := time.Now()
	hits, err := s.searchWithSpillover(ctx, query, collectionName)
	observe(ModeSpillover, start, err)
	return hits, err
}

func (s *Service) searchWithSpillover(ctx context.Context, query, collectionName string) ([]hit.Hit, error) {
	primary, err := s.searchCollection(ctx, query, collectionName, s.cfg.MaxHits)
	if err != nil {
		return nil, err
	}
	primary = hit.Truncate(primary, s.cfg.PrimaryBudget)

	if s.cfg.SpilloverBudget == 0 {
		return primary, nil
	}

	spill, err := s.searchAll(ctx, query, s.cfg.MaxHits, []string{collectionName})
	if err != nil {
		return nil, err
	}
	spill = hit.Truncate(spill, s.cfg.SpilloverBudget)

	out := make([]hit.Hit, 0, len(primary)+len(spill))
	out = append(out, primary...)
	return append(out, spill...), nil
}

func observe(mode string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchRequestsTotal.WithLabelValues(mode, status).Inc()
	metrics.SearchDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}
