package document

// Stored field names of a document hash.
const (
	FieldDocumentID = "document_id"
	FieldFilename   = "filename"
	FieldPath       = "path"
	FieldText       = "text"
	FieldTextLength = "text_length"
	FieldEmbedding  = "embedding"
)

// ReturnFields lists the fields search results carry. The embedding is never returned.
var ReturnFields = []string{FieldDocumentID, FieldFilename, FieldPath, FieldText, FieldTextLength}
