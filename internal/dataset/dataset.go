// Package dataset defines the scraped writeup records and their on-disk form.
package dataset

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/markus/writeup-explorer/internal/schemas"
)

//go:embed writeups.schema.json
var recordSchema string

// WriteupRecord is a single scraped listing entry. The URL is the unique key;
// records are immutable once scraped.
type WriteupRecord struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	URL      string `json:"url"`
}

// EmbeddingText returns the text representation of a record used for
// semantic embedding: title and subtitle joined, empty fields skipped.
func (r WriteupRecord) EmbeddingText() string {
	parts := make([]string, 0, 2)
	if r.Title != "" {
		parts = append(parts, r.Title)
	}
	if r.Subtitle != "" {
		parts = append(parts, r.Subtitle)
	}
	return strings.Join(parts, "\n\n")
}

// Load reads a dataset file, validates it against the record schema,
// and returns the parsed records.
func Load(path string) ([]WriteupRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", path, err)
	}

	if err := schemas.ValidateJSONString(recordSchema, string(data)); err != nil {
		return nil, fmt.Errorf("dataset %s is not valid: %w", path, err)
	}

	var records []WriteupRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse dataset %s: %w", path, err)
	}

	return records, nil
}

// Save writes records to path as an indented JSON array.
func Save(path string, records []WriteupRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write dataset %s: %w", path, err)
	}

	return nil
}

// Dedupe returns records with duplicate URLs removed. The first occurrence
// of each URL wins and the original ordering is preserved.
func Dedupe(records []WriteupRecord) []WriteupRecord {
	seen := make(map[string]bool, len(records))
	out := make([]WriteupRecord, 0, len(records))
	for _, r := range records {
		if r.URL == "" || seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		out = append(out, r)
	}
	return out
}

// Fingerprint returns a hex SHA-256 digest over every record's fields in
// order. Any change to content or ordering produces a different value,
// which is what invalidates the embedding cache.
func Fingerprint(records []WriteupRecord) string {
	h := sha256.New()
	for _, r := range records {
		h.Write([]byte(r.Title))
		h.Write([]byte{0})
		h.Write([]byte(r.Subtitle))
		h.Write([]byte{0})
		h.Write([]byte(r.URL))
		h.Write([]byte{0xff})
	}
	return hex.EncodeToString(h.Sum(nil))
}
