package collection

import (
	"github.com/kailas-cloud/giftsearch/internal/db"
	"github.com/kailas-cloud/giftsearch/internal/domain"
	domcol "github.com/kailas-cloud/giftsearch/internal/domain/collection"
	"github.com/kailas-cloud/giftsearch/internal/domain/document"
)

// tagSeparator never occurs in file paths, so a whole path is one tag value.
const tagSeparator = "|"

// buildIndex declares the document schema of one collection.
// text_length is sortable so it can serve as the default sort field.
func buildIndex(keys domain.Keyspace, col domcol.Collection, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	return db.NewIndex(keys.IndexName(col.Name())).
		Prefix(keys.DocPrefix(col.Name())).
		Tag(document.FieldDocumentID, tagSeparator, true).
		Tag(document.FieldFilename, tagSeparator, true).
		Tag(document.FieldPath, tagSeparator, true).
		Text(document.FieldText).
		SortableNumeric(document.FieldTextLength).
		VectorHNSW(document.FieldEmbedding, col.VectorDim(), db.DistanceCosine, hnsw.M, hnsw.EFConstruct).
		Build()
}
