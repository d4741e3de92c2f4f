package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/giftsearch/internal/db"
)

// SearchMulti sends a text and a KNN search in one pipelined round-trip.
// Either reply failing fails the whole call. A query made only of
// separator punctuation has no lexical terms; it runs as KNN alone with an
// empty text result.
func (s *Store) SearchMulti(ctx context.Context, text *db.TextQuery, knn *db.KNNQuery) (*db.MultiSearchResult, error) {
	knnArgs, err := buildKNNArgs(knn)
	if err != nil {
		return nil, fmt.Errorf("knn query: %w", err)
	}
	textArgs, err := buildTextArgs(text)
	if errors.Is(err, errNoTerms) {
		knnRes, err := s.searchKNN(ctx, knnArgs, scoreAlias(knn))
		if err != nil {
			return nil, err
		}
		return &db.MultiSearchResult{Text: &db.SearchResult{}, KNN: knnRes}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("text query: %w", err)
	}

	results := s.client.DoMulti(ctx,
		s.b().Arbitrary("FT.SEARCH").Args(textArgs...).Build(),
		s.b().Arbitrary("FT.SEARCH").Args(knnArgs...).Build(),
	)
	if len(results) != 2 {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("expected 2 replies, got %d", len(results))}
	}

	rawText, err := results[0].ToArray()
	if err != nil {
		return nil, searchErr(err)
	}
	rawKNN, err := results[1].ToArray()
	if err != nil {
		return nil, searchErr(err)
	}

	textRes, err := parseTextResult(rawText)
	if err != nil {
		return nil, fmt.Errorf("parse text reply: %w", err)
	}
	knnRes, err := parseKNNResult(rawKNN, scoreAlias(knn))
	if err != nil {
		return nil, fmt.Errorf("parse knn reply: %w", err)
	}

	return &db.MultiSearchResult{Text: textRes, KNN: knnRes}, nil
}

func (s *Store) searchKNN(ctx context.Context, args []string, alias string) (*db.SearchResult, error) {
	raw, err := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(args...).Build()).ToArray()
	if err != nil {
		return nil, searchErr(err)
	}
	res, err := parseKNNResult(raw, alias)
	if err != nil {
		return nil, fmt.Errorf("parse knn reply: %w", err)
	}
	return res, nil
}

// searchErr classifies an FT.SEARCH failure. A missing index is db.ErrIndexNotFound.
func searchErr(err error) error {
	if isMissingIndex(err) {
		return db.ErrIndexNotFound
	}
	return &db.Error{Op: db.OpSearch, Err: err}
}

// --- Command building ---

func buildTextArgs(q *db.TextQuery) ([]string, error) {
	if q == nil {
		return nil, errors.New("text query is required")
	}
	if q.IndexName == "" {
		return nil, errors.New("index name is required")
	}
	if strings.TrimSpace(q.Query) == "" {
		return nil, errors.New("query is required")
	}
	if q.TopK <= 0 {
		return nil, errors.New("topK must be positive")
	}

	fieldName := q.Field
	if fieldName == "" {
		fieldName = db.DefaultTextField
	}

	terms := queryTerms(q.Query)
	if terms == "" {
		return nil, errNoTerms
	}
	var queryStr string
	if q.Exact {
		queryStr = fmt.Sprintf(`@%s:("%s")`, fieldName, terms)
	} else {
		queryStr = fmt.Sprintf("@%s:(%s)", fieldName, terms)
	}

	args := []string{q.IndexName, queryStr, "WITHSCORES"}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	args = append(args,
		"LIMIT", "0", strconv.Itoa(q.TopK),
		"DIALECT", "2",
	)
	return args, nil
}

func buildKNNArgs(q *db.KNNQuery) ([]string, error) {
	if q == nil {
		return nil, errors.New("knn query is required")
	}
	if q.IndexName == "" {
		return nil, errors.New("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, errors.New("vector is required")
	}
	if q.K <= 0 {
		return nil, errors.New("k must be positive")
	}

	fieldName := q.Field
	if fieldName == "" {
		fieldName = db.DefaultVectorField
	}
	alias := scoreAlias(q)

	queryStr := fmt.Sprintf("*=>[KNN %d @%s $BLOB AS %s]", q.K, fieldName, alias)
	args := []string{q.IndexName, queryStr}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)+1))
		args = append(args, q.ReturnFields...)
		args = append(args, alias)
	}

	args = append(args,
		"SORTBY", alias,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", string(db.EncodeVector(q.Vector)),
		"DIALECT", "2",
	)
	return args, nil
}

func scoreAlias(q *db.KNNQuery) string {
	if q == nil || q.ScoreAlias == "" {
		return db.DefaultScoreAlias
	}
	return q.ScoreAlias
}

// --- Result parsing ---

func parseKNNResult(raw []rueidis.RedisMessage, alias string) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entry := db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		}

		if scoreStr, ok := entry.Fields[alias]; ok {
			if d, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				entry.Score = d
			}
			delete(entry.Fields, alias)
		}

		entries = append(entries, entry)
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseTextResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/3)
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Score:  score,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query helpers ---

// indexSeparators are the characters RediSearch splits TEXT fields on at
// index time, besides whitespace.
const indexSeparators = ",.<>{}[]\"':;!@#$%^&*()-+=~"

var errNoTerms = errors.New("query has no searchable terms")

// queryTerms tokenizes q the way indexed text is tokenized, so "Coca-Cola"
// becomes "Coca Cola" and matches the stored terms coca, cola. Characters
// kept inside a term that the query parser treats as syntax are escaped.
func queryTerms(q string) string {
	terms := strings.FieldsFunc(q, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(indexSeparators, r)
	})
	for i, t := range terms {
		terms[i] = termEscaper.Replace(t)
	}
	return strings.Join(terms, " ")
}

var termEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`)
