package scrape

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingHTML = `<html><body>
<a href="/competitions/banana/writeups">All writeups</a>
<a href="/competitions/banana/writeups/try-on">
  check_circle
  SUBMITTED
  Virtual Try-On
  Preview outfits on a model photo before buying anything at all
</a>
<a href="/competitions/banana/writeups/posters">
  Poster Studio
  Marketing posters from a single prompt
</a>
<a href="/competitions/banana/writeups/posters">
  Poster Studio
  Duplicate card for the same writeup
</a>
<a href="https://www.kaggle.com/competitions/banana/writeups/comics">
  Comic Builder
</a>
<a href="/competitions/other/writeups/ignored">Other competition</a>
</body></html>`

func extractListing(t *testing.T, html string) []recordAlias {
	t.Helper()
	records, err := ExtractRecords(html, "https://www.kaggle.com", "/competitions/banana/writeups")
	require.NoError(t, err)
	out := make([]recordAlias, len(records))
	for i, r := range records {
		out[i] = recordAlias{r.Title, r.Subtitle, r.URL}
	}
	return out
}

type recordAlias struct {
	Title    string
	Subtitle string
	URL      string
}

func TestExtractRecords_ParsesCards(t *testing.T) {
	records := extractListing(t, listingHTML)

	require.Len(t, records, 3)
	assert.Equal(t, recordAlias{
		Title:    "Virtual Try-On",
		Subtitle: "Preview outfits on a model photo before buying anything at all",
		URL:      "https://www.kaggle.com/competitions/banana/writeups/try-on",
	}, records[0])
}

func TestExtractRecords_SkipsBareListingLink(t *testing.T) {
	for _, r := range extractListing(t, listingHTML) {
		assert.NotEqual(t, "https://www.kaggle.com/competitions/banana/writeups", r.URL)
	}
}

func TestExtractRecords_DeduplicatesByURL(t *testing.T) {
	records := extractListing(t, listingHTML)

	urls := make(map[string]int)
	for _, r := range records {
		urls[r.URL]++
	}
	assert.Equal(t, 1, urls["https://www.kaggle.com/competitions/banana/writeups/posters"])
	// First card wins.
	assert.Equal(t, "Marketing posters from a single prompt", records[1].Subtitle)
}

func TestExtractRecords_AbsoluteHrefKept(t *testing.T) {
	records := extractListing(t, listingHTML)
	assert.Equal(t, recordAlias{
		Title: "Comic Builder",
		URL:   "https://www.kaggle.com/competitions/banana/writeups/comics",
	}, records[2])
}

func TestExtractRecords_IgnoresOtherCompetitions(t *testing.T) {
	for _, r := range extractListing(t, listingHTML) {
		assert.NotContains(t, r.URL, "/competitions/other/")
	}
}

func TestExtractRecords_InvalidBaseURL(t *testing.T) {
	_, err := ExtractRecords(listingHTML, "not-a-url", "/competitions/banana/writeups")
	assert.Error(t, err)
}

func TestSplitAnchorText_StripsStatusLines(t *testing.T) {
	title, subtitle := splitAnchorText("check_circle\nSUBMITTED\nPoster Studio\nMarketing posters")
	assert.Equal(t, "Poster Studio", title)
	assert.Equal(t, "Marketing posters", subtitle)
}

func TestSplitAnchorText_TitleOnly(t *testing.T) {
	title, subtitle := splitAnchorText("  Comic   Builder  ")
	assert.Equal(t, "Comic Builder", title)
	assert.Empty(t, subtitle)
}

func TestSplitAnchorText_OnlyStatusLines(t *testing.T) {
	title, subtitle := splitAnchorText("check_circle\nSUBMITTED")
	assert.Empty(t, title)
	assert.Empty(t, subtitle)
}

func TestSplitAnchorText_TruncatesLongSubtitle(t *testing.T) {
	long := strings.Repeat("a", 150)
	_, subtitle := splitAnchorText("Title\n" + long)
	assert.Equal(t, strings.Repeat("a", 120)+"...", subtitle)
}

func TestSplitAnchorText_ShortSubtitleNotTruncated(t *testing.T) {
	_, subtitle := splitAnchorText("Title\nshort subtitle")
	assert.Equal(t, "short subtitle", subtitle)
}
