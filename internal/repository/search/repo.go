package search

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/giftsearch/internal/db"
	"github.com/kailas-cloud/giftsearch/internal/domain"
	domdoc "github.com/kailas-cloud/giftsearch/internal/domain/document"
	"github.com/kailas-cloud/giftsearch/internal/domain/search/hit"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchMulti(ctx context.Context, text *db.TextQuery, knn *db.KNNQuery) (*db.MultiSearchResult, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store    store
	embedder domain.Embedder
	keys     domain.Keyspace
}

// New creates a search repository. embedder vectorizes queries and must
// produce vectors compatible with the ones written at index time.
func New(s store, embedder domain.Embedder, keys domain.Keyspace) *Repo {
	return &Repo{store: s, embedder: embedder, keys: keys}
}

// MultiSearch runs the exact-phrase and vector strategies against one
// collection in a single round-trip. Either strategy failing fails the call.
func (r *Repo) MultiSearch(ctx context.Context, collectionName, query string, maxHits int) (hit.Candidates, error) {
	emb, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return hit.Candidates{}, fmt.Errorf("embed query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)

	indexName := r.keys.IndexName(collectionName)
	text := &db.TextQuery{
		IndexName:    indexName,
		Field:        domdoc.FieldText,
		Query:        query,
		Exact:        true,
		TopK:         maxHits,
		ReturnFields: domdoc.ReturnFields,
	}
	knn := &db.KNNQuery{
		IndexName:    indexName,
		Field:        domdoc.FieldEmbedding,
		Vector:       emb.Embedding,
		K:            maxHits,
		ReturnFields: domdoc.ReturnFields,
	}

	res, err := r.store.SearchMulti(ctx, text, knn)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return hit.Candidates{}, fmt.Errorf("search %s: %w", collectionName, domain.ErrCollectionNotFound)
		}
		return hit.Candidates{}, fmt.Errorf("search %s: %w", collectionName, err)
	}

	return hit.Candidates{
		Lexical: parseHits(res.Text, collectionName, hit.Lexical),
		Vector:  parseHits(res.KNN, collectionName, hit.Vector),
	}, nil
}

func parseHits(
	sr *db.SearchResult, collectionName string,
	newHit func(string, domdoc.Record, float64) hit.Hit,
) []hit.Hit {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}
	hits := make([]hit.Hit, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		hits = append(hits, newHit(collectionName, recordFromFields(entry), entry.Score))
	}
	return hits
}

// recordFromFields hydrates a Record from returned hash fields.
// Falls back to the store key when document_id is missing.
func recordFromFields(entry db.SearchEntry) domdoc.Record {
	f := entry.Fields
	id := f[domdoc.FieldDocumentID]
	if id == "" {
		id = entry.Key
	}
	textLength, err := strconv.Atoi(f[domdoc.FieldTextLength])
	if err != nil {
		textLength = len([]rune(f[domdoc.FieldText]))
	}
	return domdoc.Reconstruct(id, f[domdoc.FieldFilename], f[domdoc.FieldPath], f[domdoc.FieldText], textLength)
}
