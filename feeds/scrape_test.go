package feeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/curator/core"
)

const articleFixture = `<!DOCTYPE html>
<html><head>
  <meta property="og:image" content="https://img.example.com/card.jpg">
  <meta name="twitter:image" content="https://img.example.com/tw.jpg">
</head><body>
  <nav><p>Menu</p></nav>
  <article>
    <p>First paragraph of the piece.</p>
    <p>   </p>
    <p>Second paragraph, with detail.</p>
  </article>
</body></html>`

func TestScraper_Article_ExtractsBodyAndImage(t *testing.T) {
	srv := serve(t, "text/html", articleFixture)

	page, err := NewScraper().Article(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "First paragraph of the piece. Second paragraph, with detail.", page.Body,
		"only paragraphs inside <article> count when the page has one")
	assert.Equal(t, "https://img.example.com/card.jpg", page.Image)
}

func TestScraper_Article_TwitterImageFallback(t *testing.T) {
	const fixture = `<html><head>
	  <meta property="og:image" content="https://img.example.com/logo.svg">
	  <meta name="twitter:image" content="https://img.example.com/tw.jpg">
	</head><body><p>Text.</p></body></html>`
	srv := serve(t, "text/html", fixture)

	page, err := NewScraper().Article(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/tw.jpg", page.Image,
		"a vector og:image falls through to twitter:image")
	assert.Equal(t, "Text.", page.Body, "pages without <article> fall back to all paragraphs")
}

func TestScraper_Article_EmptyURL(t *testing.T) {
	_, err := NewScraper().Article(context.Background(), " ")
	require.ErrorIs(t, err, ErrURLRequired)
}

func TestScraper_Article_TruncatesBody(t *testing.T) {
	long := strings.Repeat("word ", 1200)
	srv := serve(t, "text/html", "<html><body><p>"+long+"</p></body></html>")

	page, err := NewScraper().Article(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, []rune(page.Body), maxBodyRunes)
}

func TestScraper_Enrich_FillsMissingFields(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(articleFixture))
	}))
	t.Cleanup(srv.Close)

	items := []core.Item{
		{Key: "a", URL: srv.URL + "/a"},
		{Key: "b", URL: srv.URL + "/b", Image: "https://img.example.com/original.png"},
		{Key: "c"},
	}
	require.NoError(t, NewScraper().Enrich(context.Background(), items))

	assert.EqualValues(t, 2, requests.Load(), "items without a URL are not scraped")
	assert.Contains(t, items[0].Body, "First paragraph")
	assert.Equal(t, "https://img.example.com/card.jpg", items[0].Image)
	assert.Equal(t, "https://img.example.com/original.png", items[1].Image,
		"an image from the feed is never overwritten")
	assert.Contains(t, items[1].Body, "First paragraph")
	assert.Empty(t, items[2].Body)
}

func TestScraper_Enrich_FailuresLeaveItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	items := []core.Item{{Key: "a", URL: srv.URL, Title: "Kept"}}
	require.NoError(t, NewScraper().Enrich(context.Background(), items))

	assert.Equal(t, "Kept", items[0].Title)
	assert.Empty(t, items[0].Body)
	assert.Empty(t, items[0].Image)
}
