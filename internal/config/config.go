// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Default values applied when neither config file, environment, nor flags
// provide one.
const (
	DefaultPort       = 8990
	DefaultDataDir    = "data"
	DefaultListingURL = "https://www.kaggle.com/competitions/banana/writeups"
	DefaultTopK       = 20
	DefaultMaxPages   = 50
)

// Config represents the tool configuration that can be loaded from a JSON
// file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Paths
	DataDir string `json:"data_dir,omitempty"` // Directory for dataset, cache and query log
	Dataset string `json:"dataset,omitempty"`  // Path to the dataset JSON file (default: <data_dir>/writeups.json)

	// Scraping
	ListingURL string `json:"listing_url,omitempty"` // Listings page to scrape
	MaxPages   int    `json:"max_pages,omitempty"`   // Pagination limit for scraping

	// Models
	EmbedModel string `json:"embed_model,omitempty"` // Embedding model name
	GenModel   string `json:"gen_model,omitempty"`   // Generative model for re-rank/explain

	// Behavior
	APIKey  string `json:"api_key,omitempty"` // Gemini API key (env GEMINI_API_KEY wins)
	Port    int    `json:"port,omitempty"`    // HTTP port for serve
	TopK    int    `json:"top_k,omitempty"`   // Default number of results
	Verbose bool   `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv fills API key, port and data dir from the environment when unset.
func (c *Config) FromEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.DataDir == "" {
		c.DataDir = os.Getenv("DATA_DIR")
	}
	if c.Port == 0 {
		if p := os.Getenv("PORT"); p != "" {
			fmt.Sscanf(p, "%d", &c.Port)
		}
	}
}

// ApplyDefaults fills remaining empty fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.Dataset == "" {
		c.Dataset = filepath.Join(c.DataDir, "writeups.json")
	}
	if c.ListingURL == "" {
		c.ListingURL = DefaultListingURL
	}
	if c.MaxPages == 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.TopK == 0 {
		c.TopK = DefaultTopK
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.MaxPages < 0 {
		return fmt.Errorf("config error: 'max_pages' must be non-negative")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be a valid TCP port")
	}
	if c.TopK < 0 {
		return fmt.Errorf("config error: 'top_k' must be non-negative")
	}
	return nil
}

// QueryLogPath returns the path of the append-only query log.
func (c *Config) QueryLogPath() string {
	return filepath.Join(c.DataDir, "queries.jsonl")
}
