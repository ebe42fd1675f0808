// Package search ranks writeup records against a query vector by cosine
// similarity over the cached embedding matrix.
package search

import (
	"math"
	"sort"
	"strings"

	"github.com/markus/writeup-explorer/internal/dataset"
	"github.com/markus/writeup-explorer/internal/embedding"
)

// normEpsilon guards against division by zero for degenerate vectors.
const normEpsilon = 1e-8

// QueryResult is a scored record produced for a single query. Reason is
// filled in only when results went through LLM re-ranking.
type QueryResult struct {
	Record dataset.WriteupRecord `json:"record"`
	Score  float64               `json:"score"`
	Reason string                `json:"reason,omitempty"`
}

// Cosine returns the cosine similarity of two vectors in [-1, 1].
// Mismatched or empty vectors score zero.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	return dot / ((math.Sqrt(normA) + normEpsilon) * (math.Sqrt(normB) + normEpsilon))
}

// TopK scores every record against the query vector and returns the best k
// by descending score. Ties keep the original record order (stable sort) and
// the result never exceeds min(k, len(records)). Deterministic and
// side-effect free.
func TopK(query []float32, matrix *embedding.Matrix, records []dataset.WriteupRecord, k int) []QueryResult {
	n := min(len(records), matrix.Rows)
	if n == 0 || k <= 0 {
		return nil
	}

	results := make([]QueryResult, n)
	for i := 0; i < n; i++ {
		results[i] = QueryResult{
			Record: records[i],
			Score:  Cosine(query, matrix.Row(i)),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k < len(results) {
		results = results[:k]
	}
	return results
}

// Filter returns results whose title or subtitle contains include (when set)
// and does not contain exclude (when set). Matching is case-insensitive.
func Filter(results []QueryResult, include, exclude string) []QueryResult {
	include = strings.ToLower(strings.TrimSpace(include))
	exclude = strings.ToLower(strings.TrimSpace(exclude))
	if include == "" && exclude == "" {
		return results
	}

	out := make([]QueryResult, 0, len(results))
	for _, r := range results {
		text := strings.ToLower(r.Record.Title + " " + r.Record.Subtitle)
		if include != "" && !strings.Contains(text, include) {
			continue
		}
		if exclude != "" && strings.Contains(text, exclude) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortByTitle reorders results alphabetically by title, case-insensitive.
// Used by the UI's sort toggle; relevance order is the default.
func SortByTitle(results []QueryResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return strings.ToLower(results[i].Record.Title) < strings.ToLower(results[j].Record.Title)
	})
}
