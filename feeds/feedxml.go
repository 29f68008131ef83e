package feeds

import (
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

const (
	maxFeedBytes        = 10 << 20
	maxDescriptionRunes = 500
)

// feedDocument is the union of the RSS 2.0 and Atom shapes. Exactly one of
// Channel and Entries is populated, depending on the root element.
type feedDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
	Entries []atomEntry `xml:"entry"`
}

type rssItem struct {
	Title       string      `xml:"title"`
	Link        string      `xml:"link"`
	Description string      `xml:"description"`
	PubDate     string      `xml:"pubDate"`
	Content     string      `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
	Thumbnails  []mediaRef  `xml:"http://search.yahoo.com/mrss/ thumbnail"`
	Media       []mediaRef  `xml:"http://search.yahoo.com/mrss/ content"`
	Enclosures  []enclosure `xml:"enclosure"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	Summary   string     `xml:"summary"`
	Content   string     `xml:"content"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
}

type mediaRef struct {
	URL    string `xml:"url,attr"`
	Medium string `xml:"medium,attr"`
}

type enclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// parseFeed decodes either dialect. Legacy charsets (EUC-KR feeds are
// still around) are converted to UTF-8 on the fly.
func parseFeed(r io.Reader) (*feedDocument, error) {
	dec := xml.NewDecoder(io.LimitReader(r, maxFeedBytes))
	// Real-world feeds carry unescaped entities and stray markup.
	dec.Strict = false
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, fmt.Errorf("charset %q: %w", charset, err)
		}
		return transform.NewReader(input, enc.NewDecoder()), nil
	}

	var doc feedDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// feedEntry is the connector's normalized view over both feed dialects.
type feedEntry struct {
	title       string
	link        string
	description string
	published   string
	content     string
	thumbnails  []mediaRef
	media       []mediaRef
	enclosures  []enclosure
}

func (d *feedDocument) entries() []feedEntry {
	if len(d.Channel.Items) > 0 {
		out := make([]feedEntry, 0, len(d.Channel.Items))
		for _, it := range d.Channel.Items {
			out = append(out, feedEntry{
				title:       it.Title,
				link:        it.Link,
				description: it.Description,
				published:   it.PubDate,
				content:     it.Content,
				thumbnails:  it.Thumbnails,
				media:       it.Media,
				enclosures:  it.Enclosures,
			})
		}
		return out
	}

	out := make([]feedEntry, 0, len(d.Entries))
	for _, e := range d.Entries {
		published := e.Published
		if published == "" {
			published = e.Updated
		}
		description := e.Summary
		if strings.TrimSpace(description) == "" {
			description = e.Content
		}
		out = append(out, feedEntry{
			title:       e.Title,
			link:        e.alternateLink(),
			description: description,
			published:   published,
			content:     e.Content,
		})
	}
	return out
}

// alternateLink picks the entry's page link. Atom marks it rel="alternate"
// or leaves rel off entirely.
func (e *atomEntry) alternateLink() string {
	for _, l := range e.Links {
		if l.Rel == "" || l.Rel == "alternate" {
			return l.Href
		}
	}
	if len(e.Links) > 0 {
		return e.Links[0].Href
	}
	return ""
}

var imgSrcExpr = regexp.MustCompile(`<img[^>]+src=["']([^"']+)["']`)

// image finds the entry's lead image, trying the descriptor's hinted
// location first and image enclosures last.
func (e *feedEntry) image(hint ImageHint) string {
	switch hint {
	case HintMediaThumbnail:
		for _, t := range e.thumbnails {
			if u := usableImage(t.URL); u != "" {
				return u
			}
		}
		for _, m := range e.media {
			if m.Medium != "image" {
				continue
			}
			if u := usableImage(m.URL); u != "" {
				return u
			}
		}
	case HintContentImage:
		for _, chunk := range []string{e.content, e.description} {
			m := imgSrcExpr.FindStringSubmatch(chunk)
			if m == nil {
				continue
			}
			if u := usableImage(m[1]); u != "" {
				return u
			}
		}
	}
	for _, enc := range e.enclosures {
		if !strings.HasPrefix(enc.Type, "image/") {
			continue
		}
		if u := usableImage(enc.URL); u != "" {
			return u
		}
	}
	return ""
}

// usableImage keeps absolute non-vector URLs only.
func usableImage(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http") || strings.HasSuffix(raw, ".svg") {
		return ""
	}
	return raw
}

// The date shapes feeds actually emit, most common first. Single-digit
// days appear in the wild alongside the RFC forms.
var publishedFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parsePublished returns the zero time when nothing matches; callers treat
// that permissively rather than dropping the entry.
func parsePublished(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range publishedFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

var tagExpr = regexp.MustCompile(`<[^>]+>`)

// cleanDescription strips markup and entities from feed summaries, which
// arrive as HTML more often than not, and bounds their length.
func cleanDescription(raw string) string {
	text := tagExpr.ReplaceAllString(raw, " ")
	text = html.UnescapeString(text)
	text = strings.Join(strings.Fields(text), " ")
	return truncateRunes(text, maxDescriptionRunes)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
