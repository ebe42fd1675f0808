// Package scrape renders a paginated listings page in a headless browser and
// extracts writeup records from it.
package scrape

import "fmt"

// PageError represents a failure to render or parse a single listing page.
// Pages that fail are skipped; the run continues.
type PageError struct {
	Page    int
	Message string
	Cause   error
}

func (e *PageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("page %d: %s: %v", e.Page, e.Message, e.Cause)
	}
	return fmt.Sprintf("page %d: %s", e.Page, e.Message)
}

func (e *PageError) Unwrap() error {
	return e.Cause
}
