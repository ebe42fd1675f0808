package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ParsesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"data_dir": "/tmp/wx", "port": 9000, "top_k": 10, "verbose": true}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/wx", cfg.DataDir)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 10, cfg.TopK)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(DefaultDataDir, "writeups.json"), cfg.Dataset)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultTopK, cfg.TopK)
	assert.Equal(t, DefaultListingURL, cfg.ListingURL)
}

func TestApplyDefaults_DatasetFollowsDataDir(t *testing.T) {
	cfg := &Config{DataDir: "/srv/explorer"}
	cfg.ApplyDefaults()
	assert.Equal(t, filepath.Join("/srv/explorer", "writeups.json"), cfg.Dataset)
}

func TestApplyDefaults_DoesNotOverrideSetValues(t *testing.T) {
	cfg := &Config{Port: 1234, TopK: 5}
	cfg.ApplyDefaults()
	assert.Equal(t, 1234, cfg.Port)
	assert.Equal(t, 5, cfg.TopK)
}

func TestFromEnv_APIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg := &Config{}
	cfg.FromEnv()
	assert.Equal(t, "test-key", cfg.APIKey)
}

func TestFromEnv_DoesNotOverrideExplicitKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg := &Config{APIKey: "file-key"}
	cfg.FromEnv()
	assert.Equal(t, "file-key", cfg.APIKey)
}

func TestFromEnv_Port(t *testing.T) {
	t.Setenv("PORT", "8081")

	cfg := &Config{}
	cfg.FromEnv()
	assert.Equal(t, 8081, cfg.Port)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Port: 8990, TopK: 20}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_BadPort(t *testing.T) {
	cfg := &Config{Port: 70000}
	assert.Error(t, cfg.Validate())
}

func TestValidate_NegativeTopK(t *testing.T) {
	cfg := &Config{TopK: -1}
	assert.Error(t, cfg.Validate())
}

func TestQueryLogPath(t *testing.T) {
	cfg := &Config{DataDir: "data"}
	assert.Equal(t, filepath.Join("data", "queries.jsonl"), cfg.QueryLogPath())
}
