// Package querylog appends search queries to a JSONL log file.
// Logging is best-effort: a failed append must never fail a search.
package querylog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is one logged query.
type Entry struct {
	ID          string    `json:"id"`
	Query       string    `json:"query"`
	Timestamp   time.Time `json:"timestamp"`
	ResultCount int       `json:"result_count"`
}

// Logger appends entries to an append-only JSONL file.
type Logger struct {
	mu   sync.Mutex
	path string
}

// New creates a logger writing to path.
func New(path string) *Logger {
	return &Logger{path: path}
}

// Append writes one entry as a single JSON line.
func (l *Logger) Append(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open query log %s: %w", l.path, err)
	}
	defer f.Close()

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal query log entry: %w", err)
	}
	data = append(data, '\n')

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to append to query log %s: %w", l.path, err)
	}

	return nil
}
