package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Field        string // vector field name (default "embedding")
	Vector       []float32
	K            int
	ScoreAlias   string // distance alias in the reply (default "vector_distance")
	ReturnFields []string
}

// TextQuery is the input for lexical text search.
type TextQuery struct {
	IndexName    string
	Field        string // text field name (default "text")
	Query        string
	Exact        bool // match Query as a literal phrase
	TopK         int
	ReturnFields []string
}

// MultiSearchResult holds the per-strategy replies of a combined search.
type MultiSearchResult struct {
	Text *SearchResult
	KNN  *SearchResult
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// Score is the lexical relevance for text queries and the raw distance for KNN queries.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// Default field names and aliases used when a query leaves them empty.
const (
	DefaultVectorField = "embedding"
	DefaultTextField   = "text"
	DefaultScoreAlias  = "vector_distance"
)
