package filter

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Builtin ranks candidates in-process with sahilm/fuzzy. Whitespace splits
// the query into terms; a line matches only if every term matches, and is
// ranked by the summed term scores. Ties keep candidate order.
type Builtin struct{}

// Filter implements Filter.
func (Builtin) Filter(_ context.Context, query string, candidates []string) ([]string, error) {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return append([]string(nil), candidates...), nil
	}

	scores := make(map[int]int)
	hits := make(map[int]int)
	for _, term := range terms {
		for _, m := range fuzzy.Find(term, candidates) {
			scores[m.Index] += m.Score
			hits[m.Index]++
		}
	}

	var indexes []int
	for idx, n := range hits {
		if n == len(terms) {
			indexes = append(indexes, idx)
		}
	}
	sort.Slice(indexes, func(i, j int) bool {
		a, b := indexes[i], indexes[j]
		if scores[a] != scores[b] {
			return scores[a] > scores[b]
		}
		return a < b
	})

	matches := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		matches = append(matches, candidates[idx])
	}
	filterLog.Debug("builtin_filtered", slog.String("query", query), slog.Int("matches", len(matches)))
	return matches, nil
}
