package main

import (
	"fmt"
	"os"

	"github.com/markus/writeup-explorer/internal/config"
)

// loadConfig loads the optional config file, merges environment values and
// applies defaults. Flag overrides happen in each subcommand before the
// final Validate.
func loadConfig(path string, verbose bool) (*config.Config, error) {
	cfg := &config.Config{}

	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if verbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", path)
		}
	}

	cfg.FromEnv()
	return cfg, nil
}
