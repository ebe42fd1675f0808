// Package main provides the entry point for the Writeup Explorer CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "writeup_explorer",
	Short: "Semantic search over competition writeups",
	Long:  "Writeup Explorer scrapes a competition-writeups listing page, embeds every record with the Gemini API, and serves a web UI for semantic search with optional LLM re-ranking and explanations.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
