package scrape

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/markus/writeup-explorer/internal/dataset"
)

// DefaultUserAgent mimics a desktop browser; the listing page serves an
// empty shell to unknown agents.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// Options configures a scrape run.
type Options struct {
	// ListingURL is the full URL of the first listing page.
	ListingURL string
	// MaxPages bounds how many pagination buttons are tried.
	MaxPages int
	// PageTimeout is the per-page render timeout.
	PageTimeout time.Duration
	// Verbose enables per-page progress logging.
	Verbose bool
}

// DefaultOptions returns sensible scrape defaults.
func DefaultOptions() Options {
	return Options{
		MaxPages:    50,
		PageTimeout: 30 * time.Second,
	}
}

// Result holds the outcome of a scrape run.
type Result struct {
	Records      []dataset.WriteupRecord
	PagesScraped int
	PagesSkipped int
}

// Run renders the listing in a headless browser, walks the numbered
// pagination buttons, and extracts records from every page. Pages that fail
// to render are logged and skipped. Records are deduplicated by URL across
// pages and kept in first-seen order.
//
// Requires Chrome/Chromium to be installed on the system.
func Run(ctx context.Context, opts Options) (*Result, error) {
	listing, err := url.Parse(opts.ListingURL)
	if err != nil || listing.Scheme == "" || listing.Host == "" {
		return nil, fmt.Errorf("invalid listing URL %q", opts.ListingURL)
	}
	baseURL := listing.Scheme + "://" + listing.Host
	listingPath := listing.Path

	if opts.MaxPages < 1 {
		opts.MaxPages = DefaultOptions().MaxPages
	}
	if opts.PageTimeout == 0 {
		opts.PageTimeout = DefaultOptions().PageTimeout
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(DefaultUserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	// Load the first page.
	if err := runWithTimeout(browserCtx, opts.PageTimeout,
		chromedp.Navigate(opts.ListingURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(3*time.Second),
	); err != nil {
		return nil, fmt.Errorf("failed to load listing page: %w", err)
	}

	res := &Result{}
	seen := make(map[string]bool)

	for page := 1; page <= opts.MaxPages; page++ {
		if page > 1 {
			// Pagination uses buttons labelled with the page number, not
			// anchors. A missing button means we ran out of pages.
			sel := fmt.Sprintf(`//button[normalize-space(text())=%q]`, strconv.Itoa(page))
			if err := runWithTimeout(browserCtx, opts.PageTimeout,
				chromedp.Click(sel, chromedp.BySearch),
				chromedp.Sleep(1200*time.Millisecond),
			); err != nil {
				if opts.Verbose {
					log.Printf("[scrape] no page %d button, stopping: %v", page, err)
				}
				break
			}
		}

		var html string
		if err := runWithTimeout(browserCtx, opts.PageTimeout,
			chromedp.OuterHTML("html", &html),
		); err != nil {
			log.Printf("[scrape] warning: %v", &PageError{Page: page, Message: "render failed", Cause: err})
			res.PagesSkipped++
			continue
		}

		records, err := ExtractRecords(html, baseURL, listingPath)
		if err != nil {
			log.Printf("[scrape] warning: %v", &PageError{Page: page, Message: "extract failed", Cause: err})
			res.PagesSkipped++
			continue
		}
		if len(records) == 0 {
			if opts.Verbose {
				log.Printf("[scrape] page %d yielded no records, stopping", page)
			}
			break
		}

		added := 0
		for _, r := range records {
			if seen[r.URL] {
				continue
			}
			seen[r.URL] = true
			res.Records = append(res.Records, r)
			added++
		}
		res.PagesScraped++

		if opts.Verbose {
			log.Printf("[scrape] page %d: %d records (%d new, %d total)", page, len(records), added, len(res.Records))
		}
	}

	return res, nil
}

func runWithTimeout(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return chromedp.Run(tctx, actions...)
}
