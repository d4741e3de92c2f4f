package document

import (
	"strconv"

	"github.com/kailas-cloud/giftsearch/internal/db"
	domdoc "github.com/kailas-cloud/giftsearch/internal/domain/document"
)

// buildHashFields flattens a record and its embedding into HSET field pairs.
func buildHashFields(rec domdoc.Record, vector []float32) map[string]string {
	return map[string]string{
		domdoc.FieldDocumentID: rec.ID(),
		domdoc.FieldFilename:   rec.Filename(),
		domdoc.FieldPath:       rec.Path(),
		domdoc.FieldText:       rec.Text(),
		domdoc.FieldTextLength: strconv.Itoa(rec.TextLength()),
		domdoc.FieldEmbedding:  string(db.EncodeVector(vector)),
	}
}
