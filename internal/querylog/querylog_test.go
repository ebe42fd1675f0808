package querylog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_CreatesFileAndDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "queries.jsonl")
	l := New(path)

	err := l.Append(Entry{ID: "1", Query: "comics", Timestamp: time.Now().UTC(), ResultCount: 5})
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestAppend_AccumulatesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.jsonl")
	l := New(path)

	require.NoError(t, l.Append(Entry{ID: "1", Query: "comics", ResultCount: 5}))
	require.NoError(t, l.Append(Entry{ID: "2", Query: "posters", ResultCount: 3}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, entries, 2)
	assert.Equal(t, "comics", entries[0].Query)
	assert.Equal(t, 3, entries[1].ResultCount)
}
