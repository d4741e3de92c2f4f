// Package hit holds the per-query search candidate and its ranking order.
package hit

import (
	"cmp"
	"math"
	"slices"

	"github.com/kailas-cloud/giftsearch/internal/domain/document"
)

// SentinelVectorScore fills the vector score of a hit that only the lexical
// strategy returned. Being the largest float, it ranks lexical-only hits above
// any hit with a real vector distance and an equal text score.
const SentinelVectorScore = math.MaxFloat64

// Hit is a candidate result from one collection carrying both strategy scores.
type Hit struct {
	collection  string
	doc         document.Record
	textScore   float64
	vectorScore float64
}

// New creates a hit with explicit scores.
func New(collection string, doc document.Record, textScore, vectorScore float64) Hit {
	return Hit{collection: collection, doc: doc, textScore: textScore, vectorScore: vectorScore}
}

// Lexical creates a hit from the exact-phrase strategy; vector score is the sentinel.
func Lexical(collection string, doc document.Record, score float64) Hit {
	return New(collection, doc, score, SentinelVectorScore)
}

// Vector creates a hit from the vector strategy only; text score is zero.
func Vector(collection string, doc document.Record, distance float64) Hit {
	return New(collection, doc, 0, distance)
}

// WithVectorScore returns a copy carrying the given vector score.
func (h Hit) WithVectorScore(distance float64) Hit {
	h.vectorScore = distance
	return h
}

// Collection returns the collection the hit came from.
func (h Hit) Collection() string { return h.collection }

// Document returns the matched document.
func (h Hit) Document() document.Record { return h.doc }

// ID returns the matched document identifier.
func (h Hit) ID() string { return h.doc.ID() }

// TextMatchScore returns the lexical relevance, 0 when only vector-matched.
func (h Hit) TextMatchScore() float64 { return h.textScore }

// VectorMatchScore returns the vector distance, or SentinelVectorScore.
func (h Hit) VectorMatchScore() float64 { return h.vectorScore }

// HasVectorScore reports whether the vector strategy scored this hit.
func (h Hit) HasVectorScore() bool { return h.vectorScore != SentinelVectorScore }

// Compare orders hits descending by (text score, vector score).
// Returns a negative number when a ranks before b.
func Compare(a, b Hit) int {
	if c := cmp.Compare(b.textScore, a.textScore); c != 0 {
		return c
	}
	return cmp.Compare(b.vectorScore, a.vectorScore)
}

// Sort ranks hits in place. Equal hits keep their relative order.
func Sort(hits []Hit) {
	slices.SortStableFunc(hits, Compare)
}

// Truncate returns at most n leading hits. n <= 0 yields an empty slice.
func Truncate(hits []Hit, n int) []Hit {
	if n <= 0 {
		return hits[:0]
	}
	if len(hits) > n {
		return hits[:n]
	}
	return hits
}

// Candidates holds the raw per-strategy hit lists of one collection, before merging.
type Candidates struct {
	Lexical []Hit
	Vector  []Hit
}
