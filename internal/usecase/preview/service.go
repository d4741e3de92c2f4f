// Package preview turns ranked hits into presentation-ready results.
package preview

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/giftsearch/internal/domain/search/hit"
)

// ReadFileFunc loads a file's raw bytes. os.ReadFile satisfies it.
type ReadFileFunc func(name string) ([]byte, error)

// Config controls result formatting.
type Config struct {
	Length       int    // snippet length in characters
	URLTemplate  string // fmt template receiving collection and filename
	OriginalFrom string // path token replaced to locate the original rendering
	OriginalTo   string
}

// DefaultConfig returns the production formatting settings.
func DefaultConfig() Config {
	return Config{
		Length:       600,
		URLTemplate:  "https://www.bitrefill.com/%s/en/gift-cards/%s",
		OriginalFrom: "bitrefill_keywords",
		OriginalTo:   "bitrefill_parsed",
	}
}

// Result is one formatted search result.
type Result struct {
	Collection       string  `json:"collection"`
	Filename         string  `json:"filename"`
	URL              string  `json:"url"`
	TextMatchScore   float64 `json:"text_match_score"`
	VectorMatchScore float64 `json:"vector_match_score"`
	Snippet          string  `json:"snippet"`
	OriginalSnippet  string  `json:"original_snippet"`
}

// Service formats hits.
type Service struct {
	cfg      Config
	readFile ReadFileFunc
	logger   *zap.Logger
}

// New creates a preview service. A non-positive Length uses the default;
// a nil readFile reads from the local filesystem.
func New(cfg Config, readFile ReadFileFunc, logger *zap.Logger) *Service {
	if cfg.Length <= 0 {
		cfg.Length = DefaultConfig().Length
	}
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = DefaultConfig().URLTemplate
	}
	if readFile == nil {
		readFile = os.ReadFile
	}
	return &Service{cfg: cfg, readFile: readFile, logger: logger}
}

// Format converts hits in order.
func (s *Service) Format(hits []hit.Hit) []Result {
	out := make([]Result, 0, len(hits))
	for _, h := range hits {
		out = append(out, s.format(h))
	}
	return out
}

func (s *Service) format(h hit.Hit) Result {
	doc := h.Document()
	collection, filename := lastTwo(doc.Path())
	snippet := Truncate(doc.Text(), s.cfg.Length)

	return Result{
		Collection:       collection,
		Filename:         filename,
		URL:              fmt.Sprintf(s.cfg.URLTemplate, collection, filename),
		TextMatchScore:   h.TextMatchScore(),
		VectorMatchScore: h.VectorMatchScore(),
		Snippet:          snippet,
		OriginalSnippet:  s.originalSnippet(doc.Path(), snippet),
	}
}

// originalSnippet returns the leading characters of the original plain-text
// rendering, read as is. An unreadable or non-UTF-8 file falls back to the
// indexed snippet.
func (s *Service) originalSnippet(docPath, fallback string) string {
	if s.cfg.OriginalFrom == "" || !strings.Contains(docPath, s.cfg.OriginalFrom) {
		return fallback
	}
	original := strings.ReplaceAll(docPath, s.cfg.OriginalFrom, s.cfg.OriginalTo)

	raw, err := s.readFile(original)
	if err != nil || !utf8.Valid(raw) {
		s.logger.Debug("Original document unavailable", zap.String("path", original), zap.Error(err))
		return fallback
	}
	return Truncate(string(raw), s.cfg.Length)
}

// lastTwo returns the parent directory name and the file name of p.
func lastTwo(p string) (dir, file string) {
	slashed := filepath.ToSlash(p)
	file = path.Base(slashed)
	dir = path.Base(path.Dir(slashed))
	if dir == "." || dir == "/" {
		dir = ""
	}
	return dir, file
}

// Truncate returns at most n leading characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
