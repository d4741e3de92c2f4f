package domain

import "errors"

var (
	// ErrEmptyQuery signals a blank search query. Raised before any store call.
	ErrEmptyQuery = errors.New("query must not be empty")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrCollectionNotFound signals that a collection has no index in the store.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrUnknownCollection signals a collection name outside the configured set.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrInvalidSchema signals an invalid index schema definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrIndexingInProgress signals a reindex request for a collection that is already being indexed.
	ErrIndexingInProgress = errors.New("indexing already in progress")

	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
