package chi

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/giftsearch/internal/domain"
	"github.com/kailas-cloud/giftsearch/internal/domain/search/hit"
	"github.com/kailas-cloud/giftsearch/internal/logger"
	"github.com/kailas-cloud/giftsearch/internal/usecase/aggregate"
	healthuc "github.com/kailas-cloud/giftsearch/internal/usecase/health"
	"github.com/kailas-cloud/giftsearch/internal/usecase/preview"
)

// collectionAll selects the all-collections search.
const collectionAll = "all"

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 1 << 20

// errorMapping is the HTTP rendering of one domain sentinel.
type errorMapping struct {
	sentinel error
	status   int
	code     ErrorCode
}

// errorMappings is checked in order; the first sentinel in err's chain wins.
var errorMappings = []errorMapping{
	{domain.ErrEmptyQuery, http.StatusBadRequest, ErrorCodeValidationFailed},
	{domain.ErrInvalidSchema, http.StatusBadRequest, ErrorCodeValidationFailed},
	{domain.ErrUnknownCollection, http.StatusNotFound, ErrorCodeCollectionNotFound},
	{domain.ErrCollectionNotFound, http.StatusNotFound, ErrorCodeCollectionNotFound},
	{domain.ErrIndexingInProgress, http.StatusConflict, ErrorCodeIndexingInProgress},
	{domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited},
	{domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbeddingProviderError},
}

// Server serves the search HTTP API.
type Server struct {
	aggregator    Aggregator
	collections   Collections
	indexer       Indexer
	formatter     Formatter
	health        HealthChecker
	documentsPath string
	maxHits       int
	logger        *zap.Logger
}

// Config holds request-independent server settings.
type Config struct {
	DocumentsPath string // root passed to the indexer on reindex
	MaxHits       int    // result count of the all-collections search
}

// NewServer creates an HTTP API server.
func NewServer(
	aggregator Aggregator,
	collections Collections,
	indexer Indexer,
	formatter Formatter,
	health HealthChecker,
	cfg Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		aggregator:    aggregator,
		collections:   collections,
		indexer:       indexer,
		formatter:     formatter,
		health:        health,
		documentsPath: cfg.DocumentsPath,
		maxHits:       cfg.MaxHits,
		logger:        logger,
	}
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/collections", s.ListCollections)
	r.Post("/collections/{collection}/reindex", s.ReindexCollection)
	r.Get("/search", s.Search)
	r.Post("/search", s.Search)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// ListCollections handles GET /collections.
func (s *Server) ListCollections(w http.ResponseWriter, r *http.Request) {
	names := s.collections.Names()
	existing, err := s.collections.Existing(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	statuses := s.indexer.Statuses(names)
	items := make([]CollectionItem, len(names))
	for i, name := range names {
		items[i] = CollectionItem{Name: name, Exists: existing[name], Indexing: statuses[i]}
	}

	writeJSON(w, http.StatusOK, CollectionListResponse{Items: items})
}

// ReindexCollection handles POST /collections/{collection}/reindex.
func (s *Server) ReindexCollection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "collection")

	ctx, usage := domain.NewContextWithUsage(r.Context())
	n, err := s.indexer.IndexCollection(ctx, s.documentsPath, name)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	st, err := s.indexer.Status(name)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, ReindexResponse{Collection: name, Indexed: n, Status: st})
}

// Search handles GET and POST /search.
// collection=all (default) ranks every collection together; a named
// collection returns its own hits followed by spillover from the others.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSearchRequest(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request: "+err.Error())
		return
	}
	if req.Collection == "" {
		req.Collection = collectionAll
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())

	var (
		hits []hit.Hit
		mode string
	)
	if req.Collection == collectionAll {
		mode = aggregate.ModeAll
		hits, err = s.aggregator.SearchAll(ctx, req.Query, s.maxHits)
	} else {
		mode = aggregate.ModeSpillover
		hits, err = s.aggregator.SearchWithSpillover(ctx, req.Query, req.Collection)
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	results := s.formatter.Format(hits)
	if results == nil {
		results = []preview.Result{}
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, SearchResponse{
		Query:      strings.TrimSpace(req.Query),
		Collection: req.Collection,
		Mode:       mode,
		Total:      len(results),
		Results:    results,
	})
}

// decodeSearchRequest reads query/q and collection from the query string,
// a form body or a JSON body.
func decodeSearchRequest(w http.ResponseWriter, r *http.Request) (SearchRequest, error) {
	if r.Method == http.MethodPost && isJSON(r.Header.Get("Content-Type")) {
		var req SearchRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			return SearchRequest{}, err
		}
		return req, nil
	}

	if r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	}
	if err := r.ParseForm(); err != nil {
		return SearchRequest{}, err
	}
	query := r.Form.Get("query")
	if query == "" {
		query = r.Form.Get("q")
	}
	return SearchRequest{Query: query, Collection: r.Form.Get("collection")}, nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	return err == nil && mt == "application/json"
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	var cols map[string]string
	if len(report.Collections) > 0 {
		cols = make(map[string]string, len(report.Collections))
		for k, v := range report.Collections {
			cols[k] = string(v)
		}
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:      string(report.Status),
		Checks:      checks,
		Collections: cols,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Calls() > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// writeDomainError maps err onto its sentinel's status and code. Only the
// sentinel text reaches the client; anything unmapped is a 500.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	for _, m := range errorMappings {
		if errors.Is(err, m.sentinel) {
			log.Warn("request failed", zap.String("code", string(m.code)), zap.Error(err))
			writeError(w, m.status, m.code, m.sentinel.Error())
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
