package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/markus/writeup-explorer/internal/dataset"
	"github.com/markus/writeup-explorer/internal/observability"
	"github.com/markus/writeup-explorer/internal/scrape"
)

var scrapeCommand = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape the writeups listing page into the dataset file",
	Long: `Renders the paginated listings page in a headless browser, extracts
{title, subtitle, url} records from every page and writes them as a JSON
array. Pages that fail to render are skipped with a warning.

Requires Chrome/Chromium to be installed.`,
	RunE: runScrapeCmd,
}

var (
	scrapeConfigPath string
	scrapeURL        string
	scrapeMaxPages   int
	scrapeDataDir    string
	scrapeOut        string
	scrapeVerbose    bool
)

func init() {
	scrapeCommand.Flags().StringVar(&scrapeConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	scrapeCommand.Flags().StringVarP(&scrapeURL, "url", "u", "", "Listings page URL")
	scrapeCommand.Flags().IntVar(&scrapeMaxPages, "max-pages", 0, "Maximum pagination pages to visit")
	scrapeCommand.Flags().StringVar(&scrapeDataDir, "data-dir", "", "Directory for the dataset file")
	scrapeCommand.Flags().StringVarP(&scrapeOut, "out", "o", "", "Dataset output path (defaults to <data-dir>/writeups.json)")
	scrapeCommand.Flags().BoolVarP(&scrapeVerbose, "verbose", "v", false, "Print detailed debug information")

	rootCmd.AddCommand(scrapeCommand)
}

func runScrapeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(scrapeConfigPath, scrapeVerbose)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("url") {
		cfg.ListingURL = scrapeURL
	}
	if cmd.Flags().Changed("max-pages") {
		cfg.MaxPages = scrapeMaxPages
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = scrapeDataDir
	}
	if cmd.Flags().Changed("out") {
		cfg.Dataset = scrapeOut
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = scrapeVerbose
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Printf("[scrape] scraping %s (max %d pages)", cfg.ListingURL, cfg.MaxPages)

	res, err := scrape.Run(context.Background(), scrape.Options{
		ListingURL: cfg.ListingURL,
		MaxPages:   cfg.MaxPages,
		Verbose:    cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := dataset.Save(cfg.Dataset, res.Records); err != nil {
		return err
	}

	log.Printf("[scrape] wrote %d records to %s", len(res.Records), cfg.Dataset)

	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintScrapeSummary(res.Records, res.PagesScraped, res.PagesSkipped)
	}

	return nil
}
