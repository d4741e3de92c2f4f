package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/giftsearch/internal/domain"
	domdoc "github.com/kailas-cloud/giftsearch/internal/domain/document"
)

type mockCollections struct {
	names    []string
	ensureFn func(ctx context.Context, name string) error
}

func (m *mockCollections) Resolve(name string) error {
	if !slices.Contains(m.names, name) {
		return fmt.Errorf("%q: %w", name, domain.ErrUnknownCollection)
	}
	return nil
}

func (m *mockCollections) Ensure(ctx context.Context, name string) error {
	if m.ensureFn != nil {
		return m.ensureFn(ctx, name)
	}
	return nil
}

type mockWriter struct {
	mu       sync.Mutex
	insertFn func(ctx context.Context, collectionName string, rec domdoc.Record) (bool, error)
	written  map[string][]domdoc.Record
}

func (m *mockWriter) Insert(ctx context.Context, collectionName string, rec domdoc.Record) (bool, error) {
	if m.insertFn != nil {
		if created, err := m.insertFn(ctx, collectionName, rec); err != nil {
			return created, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.written == nil {
		m.written = make(map[string][]domdoc.Record)
	}
	m.written[collectionName] = append(m.written[collectionName], rec)
	return true, nil
}

func (m *mockWriter) paths(collectionName string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.written[collectionName]))
	for _, r := range m.written[collectionName] {
		out = append(out, r.Path())
	}
	slices.Sort(out)
	return out
}

// fileExtractor returns the raw file contents.
type fileExtractor struct{}

func (fileExtractor) Extract(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func newTestService(cols *mockCollections, w *mockWriter, cfg Config) *Service {
	return New(cols, w, fileExtractor{}, cfg, zap.NewNop())
}

// writeTree creates files under root; keys are slash-separated relative paths.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
}
