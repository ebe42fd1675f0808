package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/markus/writeup-explorer/internal/dataset"
)

const (
	// MatrixFile is the matrix file name inside the cache directory.
	MatrixFile = "embeddings.f32"
	// ManifestFile is the manifest file name inside the cache directory.
	ManifestFile = "embeddings_meta.json"

	// DefaultBatchSize is how many records are embedded per API call.
	DefaultBatchSize = 64
	// DefaultWorkers bounds how many embed batches are in flight at once
	// during a rebuild.
	DefaultWorkers = 2
)

// Manifest describes which dataset a cached matrix was built from.
// The cache is fresh only when count, model and fingerprint all match.
type Manifest struct {
	Count       int    `json:"count"`
	Dim         int    `json:"dim"`
	Model       string `json:"model"`
	Fingerprint string `json:"fingerprint"`
}

// Cache manages the on-disk embedding matrix and its manifest.
type Cache struct {
	dir       string
	embedder  Embedder
	batchSize int
	workers   int
}

// NewCache creates a cache rooted at dir using the given embedder.
func NewCache(dir string, embedder Embedder) *Cache {
	return &Cache{
		dir:       dir,
		embedder:  embedder,
		batchSize: DefaultBatchSize,
		workers:   DefaultWorkers,
	}
}

func (c *Cache) matrixPath() string   { return filepath.Join(c.dir, MatrixFile) }
func (c *Cache) manifestPath() string { return filepath.Join(c.dir, ManifestFile) }

// Ensure returns the embedding matrix for records, loading it from disk when
// the cached copy still matches the dataset and rebuilding it otherwise.
// A manifest mismatch is stale, not an error. The cache files are replaced
// only after the whole rebuild succeeded, so a failed rebuild leaves any
// previous cache intact.
func (c *Cache) Ensure(ctx context.Context, records []dataset.WriteupRecord) (*Matrix, error) {
	fingerprint := dataset.Fingerprint(records)

	if m := c.loadFresh(records, fingerprint); m != nil {
		return m, nil
	}

	log.Printf("[index] embedding %d records with %s", len(records), c.embedder.Model())

	vectors, err := c.embedAll(ctx, records)
	if err != nil {
		return nil, err
	}

	matrix, err := NewMatrix(vectors)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble embedding matrix: %w", err)
	}

	if err := c.persist(matrix, len(records), fingerprint); err != nil {
		return nil, err
	}

	return matrix, nil
}

// loadFresh returns the cached matrix when the manifest matches the current
// dataset, nil otherwise.
func (c *Cache) loadFresh(records []dataset.WriteupRecord, fingerprint string) *Matrix {
	data, err := os.ReadFile(c.manifestPath())
	if err != nil {
		return nil
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Printf("[index] ignoring unreadable manifest: %v", err)
		return nil
	}

	if manifest.Count != len(records) ||
		manifest.Model != c.embedder.Model() ||
		manifest.Fingerprint != fingerprint {
		return nil
	}

	matrix, err := ReadMatrixFile(c.matrixPath(), manifest.Count, manifest.Dim)
	if err != nil {
		log.Printf("[index] ignoring unreadable matrix: %v", err)
		return nil
	}

	return matrix
}

// embedAll embeds every record, batched, with bounded concurrency across
// batches. Vectors come back in record order.
func (c *Cache) embedAll(ctx context.Context, records []dataset.WriteupRecord) ([][]float32, error) {
	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.EmbeddingText()
	}

	vectors := make([][]float32, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for start := 0; start < len(texts); start += c.batchSize {
		end := min(start+c.batchSize, len(texts))
		g.Go(func() error {
			batch, err := c.embedder.EmbedTexts(gctx, texts[start:end])
			if err != nil {
				return fmt.Errorf("failed to embed records %d-%d: %w", start, end-1, err)
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return vectors, nil
}

// persist writes the matrix and then the manifest. The matrix goes to a
// temp file first and is renamed into place so a crash mid-write cannot
// leave a manifest pointing at a truncated matrix.
func (c *Cache) persist(matrix *Matrix, count int, fingerprint string) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache dir %s: %w", c.dir, err)
	}

	tmp := c.matrixPath() + ".tmp"
	if err := matrix.WriteFile(tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, c.matrixPath()); err != nil {
		return fmt.Errorf("failed to replace matrix file: %w", err)
	}

	manifest := Manifest{
		Count:       count,
		Dim:         matrix.Dim,
		Model:       c.embedder.Model(),
		Fingerprint: fingerprint,
	}
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(c.manifestPath(), data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	log.Printf("[index] cached %dx%d embedding matrix", matrix.Rows, matrix.Dim)
	return nil
}

// Manifest reads the current manifest from disk, or nil if absent.
func (c *Cache) Manifest() *Manifest {
	data, err := os.ReadFile(c.manifestPath())
	if err != nil {
		return nil
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil
	}
	return &manifest
}
