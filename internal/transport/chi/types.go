package chi

import (
	domcol "github.com/kailas-cloud/giftsearch/internal/domain/collection"
	"github.com/kailas-cloud/giftsearch/internal/usecase/preview"
)

// ErrorCode is a machine-readable error code.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeValidationFailed       ErrorCode = "validation_failed"
	ErrorCodeCollectionNotFound     ErrorCode = "collection_not_found"
	ErrorCodeIndexingInProgress     ErrorCode = "indexing_in_progress"
	ErrorCodeRateLimited            ErrorCode = "rate_limited"
	ErrorCodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query      string `json:"query"`
	Collection string `json:"collection"`
}

// SearchResponse lists formatted results in rank order.
type SearchResponse struct {
	Query      string           `json:"query"`
	Collection string           `json:"collection"`
	Mode       string           `json:"mode"`
	Total      int              `json:"total"`
	Results    []preview.Result `json:"results"`
}

// CollectionItem describes one configured collection.
type CollectionItem struct {
	Name     string        `json:"name"`
	Exists   bool          `json:"exists"`
	Indexing domcol.Status `json:"indexing"`
}

// CollectionListResponse is the body of GET /collections.
type CollectionListResponse struct {
	Items []CollectionItem `json:"items"`
}

// ReindexResponse is the body of POST /collections/{collection}/reindex.
type ReindexResponse struct {
	Collection string        `json:"collection"`
	Indexed    int           `json:"indexed"`
	Status     domcol.Status `json:"status"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string            `json:"status"`
	Checks      map[string]string `json:"checks"`
	Collections map[string]string `json:"collections,omitempty"`
}
