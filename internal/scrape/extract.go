package scrape

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/markus/writeup-explorer/internal/dataset"
)

// maxSubtitleLen is the display length subtitles are truncated to.
const maxSubtitleLen = 120

var whitespaceRe = regexp.MustCompile(`\s+`)

// statusPrefixes are anchor-text lines injected by the listing page's
// submission-status widget, not part of the writeup title.
var statusPrefixes = map[string]bool{
	"check_circle": true,
	"submitted":    true,
}

// ExtractRecords parses rendered listing HTML and returns the writeup records
// found on the page, deduplicated by URL. Anchors are selected by their href
// prefix (the listing path followed by a slash); the bare listing link itself
// is skipped. Relative hrefs are resolved against baseURL.
func ExtractRecords(html, baseURL, listingPath string) ([]dataset.WriteupRecord, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing HTML: %w", err)
	}

	seen := make(map[string]bool)
	records := make([]dataset.WriteupRecord, 0)

	// Cards link either relative to the site root or with the full URL.
	selector := fmt.Sprintf(`a[href^=%q], a[href^=%q]`,
		listingPath+"/", baseURL+listingPath+"/")

	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" || href == listingPath {
			return
		}

		linkURL, err := url.Parse(href)
		if err != nil {
			return
		}
		absURL := base.ResolveReference(linkURL).String()
		if seen[absURL] {
			return
		}
		seen[absURL] = true

		title, subtitle := splitAnchorText(s.Text())
		if title == "" {
			return
		}

		records = append(records, dataset.WriteupRecord{
			Title:    title,
			Subtitle: subtitle,
			URL:      absURL,
		})
	})

	return records, nil
}

// splitAnchorText parses a card anchor's inner text into title and subtitle.
// Status lines ("check_circle", "SUBMITTED") are stripped from the front; the
// first remaining line is the title, the second the subtitle.
func splitAnchorText(raw string) (title, subtitle string) {
	lines := make([]string, 0, 4)
	for _, line := range strings.Split(raw, "\n") {
		line = normalizeWhitespace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	for len(lines) > 0 && statusPrefixes[strings.ToLower(lines[0])] {
		lines = lines[1:]
	}

	if len(lines) == 0 {
		return "", ""
	}

	title = lines[0]
	if len(lines) > 1 {
		subtitle = truncate(lines[1], maxSubtitleLen)
	}
	return title, subtitle
}

func normalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
