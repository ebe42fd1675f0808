package server

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/markus/writeup-explorer/internal/querylog"
	"github.com/markus/writeup-explorer/internal/rerank"
	"github.com/markus/writeup-explorer/internal/search"
)

// candidateWindow is how many scored records the pipeline keeps before
// filters and truncation, so narrow top-k requests still have enough
// candidates to filter against.
const candidateWindow = 50

// SearchRequest holds the parameters of one search run.
type SearchRequest struct {
	Query   string `validate:"required,min=1,max=500"`
	TopK    int    `validate:"min=1,max=50"`
	Sort    string `validate:"oneof=relevance title"`
	Include string
	Exclude string
	Rerank  bool
	Explain bool
}

// parseSearchRequest builds a SearchRequest from URL query parameters.
// EventSource only issues GET requests, so the search API takes its
// parameters in the query string.
func (s *Server) parseSearchRequest(r *http.Request) (*SearchRequest, error) {
	q := r.URL.Query()

	req := &SearchRequest{
		Query:   q.Get("q"),
		TopK:    s.cfg.TopK,
		Sort:    "relevance",
		Include: q.Get("include"),
		Exclude: q.Get("exclude"),
		Rerank:  q.Get("rerank") == "true",
		Explain: q.Get("explain") == "true",
	}

	if v := q.Get("top_k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid top_k %q", v)
		}
		req.TopK = n
	}
	if v := q.Get("sort"); v != "" {
		req.Sort = v
	}

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}

	return req, nil
}

// handleSearch runs the search pipeline once and streams progress and
// results as SSE events.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseSearchRequest(r)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx := r.Context()
	runID := uuid.New().String()
	records, matrix := s.snapshot()

	if matrix == nil || matrix.Rows == 0 {
		sse.WriteError("no indexed records; run scrape and index first")
		return
	}

	sse.WriteProgress(runID, "embedding query")
	queryVec, err := s.embedder.EmbedQuery(ctx, req.Query)
	if err != nil {
		sse.WriteError(fmt.Sprintf("failed to embed query: %v", err))
		return
	}

	sse.WriteProgress(runID, "scanning writeups")
	k := req.TopK
	if k < candidateWindow {
		k = candidateWindow
	}
	results := search.TopK(queryVec, matrix, records, k)
	results = search.Filter(results, req.Include, req.Exclude)

	if req.Rerank {
		if s.llmClient == nil {
			sse.WriteWarning("re-ranking unavailable: no generative model configured")
		} else {
			sse.WriteProgress(runID, "re-ranking")
			reranked, err := rerank.Rerank(ctx, s.llmClient, req.Query, results, req.TopK)
			if err != nil {
				log.Printf("[search] re-rank failed, keeping similarity order: %v", err)
				sse.WriteWarning("re-ranking failed; showing similarity order")
			} else {
				results = reranked
			}
		}
	}

	if len(results) > req.TopK {
		results = results[:req.TopK]
	}
	if req.Sort == "title" {
		search.SortByTitle(results)
	}

	sse.WriteEvent("results", map[string]any{ //nolint:errcheck
		"run_id":  runID,
		"query":   req.Query,
		"results": results,
	})

	if req.Explain && len(results) > 0 {
		if s.llmClient == nil {
			sse.WriteWarning("explanation unavailable: no generative model configured")
		} else {
			sse.WriteProgress(runID, "explaining")
			text, err := rerank.Explain(ctx, s.llmClient, req.Query, results)
			if err != nil {
				log.Printf("[search] explain failed: %v", err)
				sse.WriteWarning("explanation failed")
			} else {
				sse.WriteEvent("explanation", map[string]string{"text": text}) //nolint:errcheck
			}
		}
	}

	if err := s.queryLog.Append(querylog.Entry{
		ID:          runID,
		Query:       req.Query,
		Timestamp:   time.Now().UTC(),
		ResultCount: len(results),
	}); err != nil {
		log.Printf("[search] query log append failed: %v", err)
	}

	sse.WriteComplete(runID, len(results))
}
