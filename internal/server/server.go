// Package server provides the HTTP API and embedded web UI for searching
// the writeup dataset.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/markus/writeup-explorer/internal/config"
	"github.com/markus/writeup-explorer/internal/dataset"
	"github.com/markus/writeup-explorer/internal/embedding"
	"github.com/markus/writeup-explorer/internal/llm"
	"github.com/markus/writeup-explorer/internal/querylog"
)

//go:embed static
var staticFS embed.FS

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	embedder   embedding.Embedder
	llmClient  llm.Client
	cache      *embedding.Cache
	queryLog   *querylog.Logger
	validate   *validator.Validate

	mu      sync.RWMutex
	records []dataset.WriteupRecord
	matrix  *embedding.Matrix
}

// New creates a new server instance. The dataset is loaded and the embedding
// cache ensured up front so the first search does not pay the build cost.
// llmClient may be nil; re-rank and explain are then reported as unavailable.
func New(ctx context.Context, cfg *config.Config, embedder embedding.Embedder, llmClient llm.Client) (*Server, error) {
	records, err := dataset.Load(cfg.Dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		embedder:  embedder,
		llmClient: llmClient,
		cache:     embedding.NewCache(cfg.DataDir, embedder),
		queryLog:  querylog.New(cfg.QueryLogPath()),
		validate:  validator.New(),
		records:   records,
	}

	matrix, err := s.cache.Ensure(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("failed to build embedding cache: %w", err)
	}
	s.matrix = matrix

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("GET /health", s.handleHealth)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded UI: %w", err)
	}
	mux.Handle("GET /", http.FileServer(http.FS(static)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for SSE search streams
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[server] listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[server] error: %v", err)
		}
	}()

	<-stop
	log.Println("[server] shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("[server] stopped")
	return nil
}

// Handler returns the server's root handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// snapshot returns the current records and matrix under the read lock.
func (s *Server) snapshot() ([]dataset.WriteupRecord, *embedding.Matrix) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records, s.matrix
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusResponse describes the dataset and cache state.
type statusResponse struct {
	Records    int    `json:"records"`
	Indexed    int    `json:"indexed"`
	Dim        int    `json:"dim"`
	EmbedModel string `json:"embed_model"`
	GenModel   string `json:"gen_model,omitempty"`
	RerankOK   bool   `json:"rerank_available"`
}

// handleStatus returns record count, cache state and model names.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	records, matrix := s.snapshot()

	resp := statusResponse{
		Records:    len(records),
		EmbedModel: s.embedder.Model(),
		RerankOK:   s.llmClient != nil,
	}
	if matrix != nil {
		resp.Indexed = matrix.Rows
		resp.Dim = matrix.Dim
	}
	if s.llmClient != nil {
		resp.GenModel = s.cfg.GenModel
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleRefresh reloads the dataset from disk and re-ensures the embedding
// cache, swapping both in atomically.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	records, err := dataset.Load(s.cfg.Dataset)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, fmt.Sprintf("failed to load dataset: %v", err))
		return
	}

	matrix, err := s.cache.Ensure(r.Context(), records)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, fmt.Sprintf("failed to build embedding cache: %v", err))
		return
	}

	s.mu.Lock()
	s.records = records
	s.matrix = matrix
	s.mu.Unlock()

	log.Printf("[server] refreshed dataset: %d records", len(records))
	s.jsonResponse(w, http.StatusOK, map[string]int{
		"records": len(records),
		"indexed": matrix.Rows,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
