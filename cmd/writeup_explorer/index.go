package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/markus/writeup-explorer/internal/dataset"
	"github.com/markus/writeup-explorer/internal/embedding"
	"github.com/markus/writeup-explorer/internal/observability"
)

var indexCommand = &cobra.Command{
	Use:   "index",
	Short: "Build or refresh the embedding cache for the dataset",
	Long: `Embeds every dataset record with the Gemini embedding API and stores
the matrix plus a manifest next to the dataset. When the cache already
matches the dataset the command makes no API calls.

Requires GEMINI_API_KEY (flag, env or .env).`,
	RunE: runIndexCmd,
}

var (
	indexConfigPath string
	indexDataDir    string
	indexDataset    string
	indexModel      string
	indexAPIKey     string
	indexVerbose    bool
)

func init() {
	indexCommand.Flags().StringVar(&indexConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	indexCommand.Flags().StringVar(&indexDataDir, "data-dir", "", "Directory for the dataset and cache files")
	indexCommand.Flags().StringVar(&indexDataset, "dataset", "", "Dataset path (defaults to <data-dir>/writeups.json)")
	indexCommand.Flags().StringVar(&indexModel, "embed-model", "", "Embedding model name")
	indexCommand.Flags().StringVar(&indexAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	indexCommand.Flags().BoolVarP(&indexVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(indexCommand)
}

func runIndexCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(indexConfigPath, indexVerbose)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = indexDataDir
	}
	if cmd.Flags().Changed("dataset") {
		cfg.Dataset = indexDataset
	}
	if cmd.Flags().Changed("embed-model") {
		cfg.EmbedModel = indexModel
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = indexAPIKey
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = indexVerbose
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("API key required: pass --api-key or set GEMINI_API_KEY")
	}

	ctx := context.Background()

	records, err := dataset.Load(cfg.Dataset)
	if err != nil {
		return err
	}

	embedder, err := embedding.NewGeminiEmbedder(ctx, cfg.APIKey, cfg.EmbedModel)
	if err != nil {
		return err
	}
	defer embedder.Close()

	cache := embedding.NewCache(cfg.DataDir, embedder)

	rebuilt := true
	if m := cache.Manifest(); m != nil &&
		m.Model == embedder.Model() &&
		m.Count == len(records) &&
		m.Fingerprint == dataset.Fingerprint(records) {
		rebuilt = false
	}

	matrix, err := cache.Ensure(ctx, records)
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}

	if rebuilt {
		log.Printf("[index] embedded %d records (dim %d)", matrix.Rows, matrix.Dim)
	} else {
		log.Printf("[index] cache up to date: %d records", matrix.Rows)
	}

	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintIndexSummary(cache.Manifest(), rebuilt)
	}

	return nil
}
