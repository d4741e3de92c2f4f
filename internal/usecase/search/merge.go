package search

import "github.com/kailas-cloud/giftsearch/internal/domain/search/hit"

// merge combines the per-strategy lists of one collection into one ranked
// list with one hit per document, truncated to maxHits.
//
// Lexical hits seed the set with the sentinel vector score. A vector hit for a
// seeded document only fills in its vector score; any other vector hit enters
// with a zero text score.
func merge(c hit.Candidates, maxHits int) []hit.Hit {
	merged := make([]hit.Hit, 0, len(c.Lexical)+len(c.Vector))
	pos := make(map[string]int, len(c.Lexical)+len(c.Vector))

	for _, h := range c.Lexical {
		if _, seen := pos[h.ID()]; seen {
			continue
		}
		pos[h.ID()] = len(merged)
		merged = append(merged, h)
	}

	for _, v := range c.Vector {
		if i, ok := pos[v.ID()]; ok {
			merged[i] = merged[i].WithVectorScore(v.VectorMatchScore())
			continue
		}
		pos[v.ID()] = len(merged)
		merged = append(merged, v)
	}

	hit.Sort(merged)
	return hit.Truncate(merged, maxHits)
}
