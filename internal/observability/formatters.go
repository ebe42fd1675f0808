// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/markus/writeup-explorer/internal/dataset"
	"github.com/markus/writeup-explorer/internal/embedding"
	"github.com/markus/writeup-explorer/internal/search"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintScrapeSummary outputs a human-readable summary of a scrape run.
func (p *Printer) PrintScrapeSummary(records []dataset.WriteupRecord, pagesScraped, pagesSkipped int) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Pages scraped:  %d\n", pagesScraped))
	if pagesSkipped > 0 {
		sb.WriteString(fmt.Sprintf("Pages skipped:  %d\n", pagesSkipped))
	}
	sb.WriteString(fmt.Sprintf("Records found:  %d\n", len(records)))

	if len(records) > 0 {
		sb.WriteString("\n")
		count := min(len(records), maxItemsToShow)
		for i := 0; i < count; i++ {
			title := records[i].Title
			if len(title) > 50 {
				title = title[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("• %s\n", title))
		}
		if len(records) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more\n", len(records)-maxItemsToShow))
		}
	}

	p.printBox("SCRAPE SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintIndexSummary outputs the state of the embedding cache after a build.
func (p *Printer) PrintIndexSummary(manifest *embedding.Manifest, rebuilt bool) {
	if manifest == nil {
		return
	}

	var sb strings.Builder
	if rebuilt {
		sb.WriteString("Status:     rebuilt\n")
	} else {
		sb.WriteString("Status:     up to date\n")
	}
	sb.WriteString(fmt.Sprintf("Vectors:    %d\n", manifest.Count))
	sb.WriteString(fmt.Sprintf("Dimension:  %d\n", manifest.Dim))
	sb.WriteString(fmt.Sprintf("Model:      %s\n", manifest.Model))
	fp := manifest.Fingerprint
	if len(fp) > 16 {
		fp = fp[:16] + "..."
	}
	sb.WriteString(fmt.Sprintf("Fingerprint: %s", fp))

	p.printBox("EMBEDDING INDEX", sb.String())
}

// PrintSearchResults outputs the top results of a query with scores.
func (p *Printer) PrintSearchResults(query string, results []search.QueryResult) {
	if len(results) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO RESULTS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	q := query
	if len(q) > 45 {
		q = q[:42] + "..."
	}
	sb.WriteString(fmt.Sprintf("Query: %s\n\n", q))

	count := min(len(results), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := results[i]
		title := r.Record.Title
		if len(title) > 45 {
			title = title[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, title))
		sb.WriteString(fmt.Sprintf("    Score: %.4f\n", r.Score))
		if r.Reason != "" {
			reason := r.Reason
			if len(reason) > 45 {
				reason = reason[:42] + "..."
			}
			sb.WriteString(fmt.Sprintf("    %s\n", reason))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(results) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more results", len(results)-maxItemsToShow))
	}

	p.printBox("TOP RESULTS", sb.String())
}
