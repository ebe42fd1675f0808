// Package rerank reorders cosine-similarity candidates with a generative
// model call and produces short match explanations. Every failure here is
// recoverable: callers fall back to the unmodified cosine ranking.
package rerank

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/markus/writeup-explorer/internal/llm"
	"github.com/markus/writeup-explorer/internal/prompts"
	"github.com/markus/writeup-explorer/internal/search"
)

// rankedItem is one element of the expected JSON response.
type rankedItem struct {
	URL    string  `json:"url"`
	Reason string  `json:"reason"`
	Score  float64 `json:"score"`
}

// Rerank asks the model to reorder candidates for the query and annotate
// each with a short reason. Items are matched back to candidates by URL;
// URLs the model invents are dropped and scores are clamped to [0, 1].
// Returns an error when the response is unusable so the caller can fall
// back to the cosine order.
func Rerank(ctx context.Context, client llm.Client, query string, candidates []search.QueryResult, limit int) ([]search.QueryResult, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}

	prompt := prompts.Format(prompts.MustGet("search.json", "rerank-candidates"), map[string]string{
		"Query":      query,
		"Candidates": formatCandidates(candidates),
		"Limit":      strconv.Itoa(limit),
	})

	raw, err := client.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("re-rank call failed: %w", err)
	}

	var items []rankedItem
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &items); err != nil {
		return nil, fmt.Errorf("re-rank response is not valid JSON: %w", err)
	}

	byURL := make(map[string]search.QueryResult, len(candidates))
	for _, c := range candidates {
		byURL[c.Record.URL] = c
	}

	out := make([]search.QueryResult, 0, limit)
	seen := make(map[string]bool)
	for _, item := range items {
		c, ok := byURL[item.URL]
		if !ok || seen[item.URL] {
			continue
		}
		seen[item.URL] = true

		c.Score = clamp01(item.Score)
		c.Reason = item.Reason
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("re-rank response matched no candidates")
	}

	return out, nil
}

// Explain asks the model for a short bulleted explanation of why the
// results match the query.
func Explain(ctx context.Context, client llm.Client, query string, results []search.QueryResult) (string, error) {
	if len(results) == 0 {
		return "", fmt.Errorf("no results to explain")
	}

	var sb strings.Builder
	for _, r := range results {
		sb.WriteString("- ")
		sb.WriteString(r.Record.Title)
		if r.Record.Subtitle != "" {
			sb.WriteString(": ")
			sb.WriteString(r.Record.Subtitle)
		}
		sb.WriteString("\n")
	}

	prompt := prompts.Format(prompts.MustGet("search.json", "explain-results"), map[string]string{
		"Query":   query,
		"Results": sb.String(),
	})

	text, err := client.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("explain call failed: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("explain call returned empty text")
	}

	return text, nil
}

func formatCandidates(candidates []search.QueryResult) string {
	var sb strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&sb, "- title: %s\n  subtitle: %s\n  url: %s\n  sim: %.3f\n",
			c.Record.Title, c.Record.Subtitle, c.Record.URL, c.Score)
	}
	return sb.String()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
