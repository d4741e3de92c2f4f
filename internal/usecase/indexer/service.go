package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/giftsearch/internal/domain"
	domcol "github.com/kailas-cloud/giftsearch/internal/domain/collection"
	domdoc "github.com/kailas-cloud/giftsearch/internal/domain/document"
	"github.com/kailas-cloud/giftsearch/internal/metrics"
)

// Document outcome labels.
const (
	resultCreated  = "created"
	resultReplaced = "replaced"
	resultSkipped  = "skipped"
	resultFailed   = "failed"
)

// Config controls indexing concurrency and file selection.
type Config struct {
	CollectionWorkers int // collections indexed in parallel by IndexAll
	DocumentWorkers   int // documents written in parallel per collection
	Filter            Filter
}

// Service walks collection directories and writes their documents.
type Service struct {
	collections CollectionManager
	writer      DocumentWriter
	extractor   Extractor
	cfg         Config
	logger      *zap.Logger

	mu       sync.RWMutex
	statuses map[string]domcol.Status
}

// New creates an indexer. Worker counts below 1 are raised to 1.
func New(
	collections CollectionManager, writer DocumentWriter, extractor Extractor, cfg Config, logger *zap.Logger,
) *Service {
	cfg.CollectionWorkers = max(cfg.CollectionWorkers, 1)
	cfg.DocumentWorkers = max(cfg.DocumentWorkers, 1)
	return &Service{
		collections: collections,
		writer:      writer,
		extractor:   extractor,
		cfg:         cfg,
		logger:      logger,
		statuses:    make(map[string]domcol.Status),
	}
}

// IndexCollection indexes every file under root/name and returns the number
// of documents written. Files with blank text are skipped and a failed write
// is logged without stopping the walk. Only a failure to declare the
// collection fails the call.
func (s *Service) IndexCollection(ctx context.Context, root, name string) (int, error) {
	if err := s.collections.Resolve(name); err != nil {
		return 0, err
	}
	if err := s.begin(name); err != nil {
		return 0, err
	}

	start := time.Now()
	metrics.IndexingInProgress.WithLabelValues(name).Set(1)
	defer func() {
		metrics.IndexingInProgress.WithLabelValues(name).Set(0)
		metrics.IndexingDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	if err := s.collections.Ensure(ctx, name); err != nil {
		err = fmt.Errorf("ensure collection %s: %w", name, err)
		s.finish(name, err)
		return 0, err
	}

	dir := filepath.Join(root, name)
	files := s.listFiles(dir, name)
	s.logger.Info("Indexing collection",
		zap.String("collection", name),
		zap.String("dir", dir),
		zap.Int("files", len(files)),
	)

	indexed, err := s.writeAll(ctx, name, files)
	s.finish(name, err)
	if err != nil {
		return indexed, err
	}

	s.logger.Info("Indexing complete",
		zap.String("collection", name),
		zap.Int("indexed", indexed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return indexed, nil
}

// IndexAll indexes the named collections in parallel and returns per-collection counts.
// Errors of individual collections are joined.
func (s *Service) IndexAll(ctx context.Context, root string, names []string) (map[string]int, error) {
	pool, err := ants.NewPool(s.cfg.CollectionWorkers)
	if err != nil {
		return nil, fmt.Errorf("create collection pool: %w", err)
	}
	defer pool.Release()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		counts = make(map[string]int, len(names))
		errs   []error
	)
	for _, name := range names {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			n, err := s.IndexCollection(ctx, root, name)
			mu.Lock()
			defer mu.Unlock()
			counts[name] = n
			if err != nil {
				errs = append(errs, err)
			}
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("schedule %s: %w", name, err))
			mu.Unlock()
		}
	}
	wg.Wait()

	return counts, errors.Join(errs...)
}

// Status returns the indexing status of a configured collection.
func (s *Service) Status(name string) (domcol.Status, error) {
	if err := s.collections.Resolve(name); err != nil {
		return domcol.Status{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.statuses[name]; ok {
		return st, nil
	}
	return domcol.Status{Collection: name, State: domcol.StateIdle}, nil
}

// Statuses returns the statuses of the given collections, in order.
func (s *Service) Statuses(names []string) []domcol.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domcol.Status, 0, len(names))
	for _, name := range names {
		st, ok := s.statuses[name]
		if !ok {
			st = domcol.Status{Collection: name, State: domcol.StateIdle}
		}
		out = append(out, st)
	}
	return out
}

// listFiles returns the regular files under dir that pass the filter, sorted.
// A missing directory yields no files.
func (s *Service) listFiles(dir, name string) []string {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				s.logger.Warn("Collection directory not readable",
					zap.String("collection", name), zap.String("dir", dir), zap.Error(err))
				return fs.SkipAll
			}
			s.logger.Warn("Skipping unreadable path",
				zap.String("collection", name), zap.String("path", p), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, relErr := filepath.Rel(dir, p)
		if relErr != nil || !s.cfg.Filter.Match(rel) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		s.logger.Warn("Walk failed", zap.String("collection", name), zap.Error(err))
	}
	slices.Sort(files)
	return files
}

// writeAll extracts and writes files through a bounded pool.
// Returns the number written, or the context error if indexing was canceled.
func (s *Service) writeAll(ctx context.Context, name string, files []string) (int, error) {
	pool, err := ants.NewPool(s.cfg.DocumentWorkers)
	if err != nil {
		return 0, fmt.Errorf("create document pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		task := func() {
			defer wg.Done()
			s.record(name, s.indexFile(ctx, name, file))
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			s.logger.Error("Failed to schedule document",
				zap.String("collection", name), zap.String("path", file), zap.Error(err))
			s.record(name, resultFailed)
		}
	}
	wg.Wait()

	s.mu.RLock()
	indexed := s.statuses[name].Indexed
	s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return indexed, fmt.Errorf("index %s: %w", name, err)
	}
	return indexed, nil
}

func (s *Service) indexFile(ctx context.Context, name, file string) string {
	if ctx.Err() != nil {
		return resultFailed
	}

	text := s.extractor.Extract(file)
	if strings.TrimSpace(text) == "" {
		s.logger.Debug("Skipping empty document", zap.String("collection", name), zap.String("path", file))
		return resultSkipped
	}

	rec, err := domdoc.NewRecord(file, text)
	if err != nil {
		s.logger.Warn("Invalid document", zap.String("collection", name), zap.String("path", file), zap.Error(err))
		return resultSkipped
	}

	created, err := s.writer.Insert(ctx, name, rec)
	if err != nil {
		s.logger.Error("Failed to index document",
			zap.String("collection", name), zap.String("path", file), zap.Error(err))
		return resultFailed
	}

	s.logger.Debug("Indexed", zap.String("collection", name), zap.String("path", file))
	if created {
		return resultCreated
	}
	return resultReplaced
}

func (s *Service) begin(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statuses[name].Running() {
		return fmt.Errorf("%s: %w", name, domain.ErrIndexingInProgress)
	}
	s.statuses[name] = domcol.Status{
		Collection: name,
		State:      domcol.StateIndexing,
		StartedAt:  time.Now().UTC(),
	}
	return nil
}

func (s *Service) record(name, result string) {
	metrics.DocumentsIndexedTotal.WithLabelValues(name, result).Inc()

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.statuses[name]
	switch result {
	case resultCreated, resultReplaced:
		st.Indexed++
	case resultSkipped:
		st.Skipped++
	default:
		st.FailedDocuments++
	}
	s.statuses[name] = st
}

func (s *Service) finish(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.statuses[name]
	st.FinishedAt = time.Now().UTC()
	st.State = domcol.StateDone
	if err != nil {
		st.State = domcol.StateFailed
		st.Error = err.Error()
	}
	s.statuses[name] = st
}
