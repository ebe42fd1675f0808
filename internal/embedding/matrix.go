// Package embedding obtains embedding vectors for writeup records and caches
// the resulting matrix on disk alongside a manifest used for staleness checks.
package embedding

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Matrix is a dense row-major matrix of embedding vectors, one row per
// record, in record order.
type Matrix struct {
	Rows int
	Dim  int
	data []float32
}

// NewMatrix assembles a matrix from per-record vectors. All vectors must
// share the same non-zero dimension.
func NewMatrix(vectors [][]float32) (*Matrix, error) {
	if len(vectors) == 0 {
		return &Matrix{}, nil
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("embedding vector 0 is empty")
	}

	m := &Matrix{
		Rows: len(vectors),
		Dim:  dim,
		data: make([]float32, 0, len(vectors)*dim),
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("embedding vector %d has dimension %d, want %d", i, len(v), dim)
		}
		m.data = append(m.data, v...)
	}

	return m, nil
}

// Row returns the vector for row i. The returned slice aliases the matrix
// storage and must not be modified.
func (m *Matrix) Row(i int) []float32 {
	return m.data[i*m.Dim : (i+1)*m.Dim]
}

// WriteFile persists the matrix as little-endian float32 values, row-major.
// Dimensions are not stored in the file; they live in the manifest.
func (m *Matrix) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create matrix file %s: %w", path, err)
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, m.data); err != nil {
		return fmt.Errorf("failed to write matrix file %s: %w", path, err)
	}

	return nil
}

// ReadMatrixFile loads a matrix persisted by WriteFile. The expected shape
// comes from the manifest; a size mismatch means the cache is stale or
// corrupt and is reported as an error so the caller can rebuild.
func ReadMatrixFile(path string, rows, dim int) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open matrix file %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat matrix file %s: %w", path, err)
	}

	want := int64(rows) * int64(dim) * 4
	if info.Size() != want {
		return nil, fmt.Errorf("matrix file %s has %d bytes, want %d for %dx%d", path, info.Size(), want, rows, dim)
	}

	data := make([]float32, rows*dim)
	if err := binary.Read(f, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("failed to read matrix file %s: %w", path, err)
	}

	return &Matrix{Rows: rows, Dim: dim, data: data}, nil
}
