package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/markus/writeup-explorer/internal/embedding"
	"github.com/markus/writeup-explorer/internal/llm"
	"github.com/markus/writeup-explorer/internal/server"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Start the search UI and API server",
	Long: `Loads the dataset, ensures the embedding cache is current and serves
the search UI. Searches embed the query, rank records by cosine similarity
and optionally re-rank and explain results with a generative model.

Requires GEMINI_API_KEY (flag, env or .env).`,
	RunE: runServeCmd,
}

var (
	servePort       int
	serveConfigPath string
	serveDataDir    string
	serveDataset    string
	serveEmbedModel string
	serveGenModel   string
	serveAPIKey     string
	serveVerbose    bool
)

func init() {
	serveCommand.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCommand.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on")
	serveCommand.Flags().StringVar(&serveDataDir, "data-dir", "", "Directory for the dataset and cache files")
	serveCommand.Flags().StringVar(&serveDataset, "dataset", "", "Dataset path (defaults to <data-dir>/writeups.json)")
	serveCommand.Flags().StringVar(&serveEmbedModel, "embed-model", "", "Embedding model name")
	serveCommand.Flags().StringVar(&serveGenModel, "gen-model", "", "Generative model for re-rank and explanations")
	serveCommand.Flags().StringVar(&serveAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")
	serveCommand.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(serveCommand)
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(serveConfigPath, serveVerbose)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = serveDataDir
	}
	if cmd.Flags().Changed("dataset") {
		cfg.Dataset = serveDataset
	}
	if cmd.Flags().Changed("embed-model") {
		cfg.EmbedModel = serveEmbedModel
	}
	if cmd.Flags().Changed("gen-model") {
		cfg.GenModel = serveGenModel
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = serveAPIKey
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = serveVerbose
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("API key required: pass --api-key or set GEMINI_API_KEY")
	}
	if cfg.GenModel == "" {
		cfg.GenModel = llm.DefaultModel
	}

	ctx := context.Background()

	embedder, err := embedding.NewGeminiEmbedder(ctx, cfg.APIKey, cfg.EmbedModel)
	if err != nil {
		return err
	}
	defer embedder.Close()

	llmClient, err := llm.NewGeminiClient(ctx, cfg.APIKey, cfg.GenModel)
	if err != nil {
		return err
	}
	defer llmClient.Close()

	srv, err := server.New(ctx, cfg, embedder, llmClient)
	if err != nil {
		return err
	}

	log.Printf("[serve] http://localhost:%d", cfg.Port)
	return srv.Start()
}
