package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/giftsearch/internal/config"
	"github.com/kailas-cloud/giftsearch/internal/db"
	"github.com/kailas-cloud/giftsearch/internal/domain"
	"github.com/kailas-cloud/giftsearch/internal/extract"
	"github.com/kailas-cloud/giftsearch/internal/metrics"
	collectionrepo "github.com/kailas-cloud/giftsearch/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/giftsearch/internal/repository/document"
	searchrepo "github.com/kailas-cloud/giftsearch/internal/repository/search"
	chiTransport "github.com/kailas-cloud/giftsearch/internal/transport/chi"
	aggregateuc "github.com/kailas-cloud/giftsearch/internal/usecase/aggregate"
	collectionuc "github.com/kailas-cloud/giftsearch/internal/usecase/collection"
	healthuc "github.com/kailas-cloud/giftsearch/internal/usecase/health"
	indexeruc "github.com/kailas-cloud/giftsearch/internal/usecase/indexer"
	previewuc "github.com/kailas-cloud/giftsearch/internal/usecase/preview"
	searchuc "github.com/kailas-cloud/giftsearch/internal/usecase/search"
)

const healthProbeTimeout = 5 * time.Second

// app holds the wired services. Everything is built once in newApp and
// handed to the HTTP layer by reference.
type app struct {
	cfg         config.Config
	logger      *zap.Logger
	collections *collectionuc.Service
	indexer     *indexeruc.Service
	aggregator  *aggregateuc.Service
	preview     *previewuc.Service
	health      *healthuc.Service
}

func newApp(cfg config.Config, store db.Store, logger *zap.Logger) *app {
	keys := domain.NewKeyspace(cfg.Storage.KeyPrefix)
	emb := newEmbedders(cfg.Embedding, store, keys, logger)

	collRepo := collectionrepo.New(store, keys).WithHNSW(collectionrepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})
	docRepo := documentrepo.New(store, emb.document, keys)
	searchRepo := searchrepo.New(store, emb.query, keys)

	extractor := extract.NewHTML(logger)

	collSvc := collectionuc.New(collRepo, cfg.Index.Collections, cfg.Embedding.Vectorizer.Dimensions, logger)
	indexSvc := indexeruc.New(collSvc, docRepo, extractor, indexeruc.Config{
		CollectionWorkers: cfg.Index.CollectionWorkers,
		DocumentWorkers:   cfg.Index.DocumentWorkers,
		Filter:            indexeruc.Filter{Include: cfg.Index.Include, Exclude: cfg.Index.Exclude},
	}, logger)
	searchSvc := searchuc.New(searchRepo, time.Duration(cfg.Search.RequestTimeoutMs)*time.Millisecond)

	return &app{
		cfg:         cfg,
		logger:      logger,
		collections: collSvc,
		indexer:     indexSvc,
		aggregator: aggregateuc.New(searchSvc, collSvc, aggregateuc.Config{
			MaxHits:         cfg.Search.MaxHits,
			PrimaryBudget:   cfg.Search.PrimaryBudget,
			SpilloverBudget: cfg.Search.SpilloverBudget,
			FanoutWorkers:   cfg.Search.FanoutWorkers,
		}, logger),
		preview: previewuc.New(previewuc.Config{
			Length:       cfg.Preview.Length,
			URLTemplate:  cfg.Preview.URLTemplate,
			OriginalFrom: cfg.Preview.OriginalFrom,
			OriginalTo:   cfg.Preview.OriginalTo,
		}, os.ReadFile, logger),
		health: healthuc.New(store, emb.health, collSvc, healthProbeTimeout),
	}
}

// prepareCollections resets every collection when rebuilding, then indexes
// them all (rebuild or index_on_start) or only declares missing schemas.
func (a *app) prepareCollections(ctx context.Context) error {
	idx := a.cfg.Index
	names := a.collections.Names()

	if idx.Rebuild {
		dropped := a.collections.ResetAll(ctx, names)
		a.logger.Info("Existing collections have been deleted", zap.Int("dropped", dropped))
	}

	if !idx.Rebuild && !idx.IndexOnStart {
		for _, name := range names {
			if err := a.collections.Ensure(ctx, name); err != nil {
				return fmt.Errorf("ensure collection %s: %w", name, err)
			}
		}
		return nil
	}

	counts, err := a.indexer.IndexAll(ctx, idx.DocumentsPath, names)
	if err != nil {
		// Per-collection failures are already in the statuses; serve what was indexed.
		a.logger.Error("Indexing finished with errors", zap.Error(err))
	}
	if ctx.Err() != nil {
		return fmt.Errorf("startup indexing: %w", ctx.Err())
	}
	a.logger.Info("Indexing complete. Ready for search queries.", zap.Any("indexed", counts))
	return nil
}

func (a *app) router() chi.Router {
	server := chiTransport.NewServer(a.aggregator, a.collections, a.indexer, a.preview, a.health,
		chiTransport.Config{
			DocumentsPath: a.cfg.Index.DocumentsPath,
			MaxHits:       a.cfg.Search.MaxHits,
		}, a.logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(a.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger(a.logger))
	r.Use(chiTransport.BearerAuthMiddleware(a.cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)
	return r
}
