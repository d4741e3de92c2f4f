package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/kailas-cloud/giftsearch/internal/db"
)

// CreateIndex runs FT.CREATE for def. An existing index of the same name
// yields db.ErrIndexExists.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	err = s.do(ctx, s.b().Arbitrary("FT.CREATE").Args(args...).Build()).Error()
	switch {
	case err == nil:
		return nil
	case isRedisErr(err, "index already exists"):
		return db.ErrIndexExists
	default:
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
}

// DropIndex runs FT.DROPINDEX. With deleteDocs the indexed hashes go too.
func (s *Store) DropIndex(ctx context.Context, name string, deleteDocs bool) error {
	args := []string{name}
	if deleteDocs {
		args = append(args, "DD")
	}

	err := s.do(ctx, s.b().Arbitrary("FT.DROPINDEX").Args(args...).Build()).Error()
	switch {
	case err == nil:
		return nil
	case isMissingIndex(err):
		return db.ErrIndexNotFound
	default:
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
}

// IndexExists asks FT.INFO about name.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	err := s.do(ctx, s.b().Arbitrary("FT.INFO").Args(name).Build()).Error()
	switch {
	case err == nil:
		return true, nil
	case isMissingIndex(err):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
}

// ListIndexes returns every FT index name (FT._LIST).
func (s *Store) ListIndexes(ctx context.Context) ([]string, error) {
	names, err := s.do(ctx, s.b().Arbitrary("FT._LIST").Build()).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpListIndexes, Err: err}
	}
	return names, nil
}

// isMissingIndex matches both wordings Redis uses for an absent index.
func isMissingIndex(err error) bool {
	return isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index")
}

// buildCreateArgs renders everything after FT.CREATE:
// name ON HASH [PREFIX n p...] SCHEMA field...
func buildCreateArgs(def *db.IndexDefinition) ([]string, error) {
	switch {
	case def.Name == "":
		return nil, errors.New("index name is required")
	case len(def.Fields) == 0:
		return nil, errors.New("at least one field is required")
	}

	storage := def.StorageType
	if storage == "" {
		storage = db.StorageHash
	}

	out := []string{def.Name, "ON", string(storage)}
	if n := len(def.Prefixes); n > 0 {
		out = append(out, "PREFIX", strconv.Itoa(n))
		out = append(out, def.Prefixes...)
	}
	out = append(out, "SCHEMA")

	for i := range def.Fields {
		field, err := buildFieldArgs(&def.Fields[i])
		if err != nil {
			return nil, err
		}
		out = append(out, field...)
	}
	return out, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	out := []string{f.Name}
	switch f.Type {
	case db.IndexFieldNumeric, db.IndexFieldText:
		out = append(out, f.Type.String())
	case db.IndexFieldTag:
		out = append(out, f.Type.String())
		if f.TagSeparator != "" {
			out = append(out, "SEPARATOR", f.TagSeparator)
		}
		if f.TagCaseSensitive {
			out = append(out, "CASESENSITIVE")
		}
	case db.IndexFieldVector:
		if f.VectorDim <= 0 {
			return nil, errors.New("vector DIM must be positive")
		}
		// Vector fields are never SORTABLE.
		return append(out, buildHNSWArgs(f)...), nil
	default:
		return nil, errors.New("unknown field type")
	}

	if f.Sortable {
		out = append(out, "SORTABLE")
	}
	return out, nil
}

// buildHNSWArgs renders "VECTOR HNSW <n> attr value ...", n counting both
// names and values.
func buildHNSWArgs(f *db.IndexField) []string {
	metric := f.VectorDistance
	if metric == "" {
		metric = db.DistanceCosine
	}

	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(f.VectorDim),
		"DISTANCE_METRIC", string(metric),
	}
	if f.VectorM > 0 {
		attrs = append(attrs, "M", strconv.Itoa(f.VectorM))
	}
	if f.VectorEFConstruct > 0 {
		attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(f.VectorEFConstruct))
	}
	return append([]string{"VECTOR", "HNSW", strconv.Itoa(len(attrs))}, attrs...)
}
