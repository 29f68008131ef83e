package feeds

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/curator/core"
)

// Some feed hosts refuse requests that do not look like a browser.
const userAgent = "Mozilla/5.0 (compatible; curator/1.0)"

// Fetcher collects raw content candidates from one source.
type Fetcher interface {
	Fetch(ctx context.Context, desc Descriptor) ([]core.Item, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, desc Descriptor) ([]core.Item, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, desc Descriptor) ([]core.Item, error) {
	return f(ctx, desc)
}

// RSS fetches sources published as RSS 2.0 or Atom feeds. Descriptors
// marked KindPage are scraped as HTML listing pages instead, so one
// connector covers the whole catalog.
type RSS struct {
	client  *http.Client
	matcher *Relevance
	logger  *slog.Logger
	now     func() time.Time
}

// NewRSS creates the feed connector.
func NewRSS(opts ...Option) *RSS {
	o := applyOptions(options{}, opts...)
	return &RSS{
		client:  o.client,
		matcher: o.matcher,
		logger:  o.logger.With("component", "feeds"),
		now:     time.Now,
	}
}

// Fetch collects up to desc.MaxItems candidates from the source, in the
// order the feed presents them. Entries outside the recency window are
// skipped, and on sources with the keyword pre-filter enabled, off-topic
// entries are too. Returned items carry the natural key, the raw fields
// and the Relevant flag.
func (r *RSS) Fetch(ctx context.Context, desc Descriptor) ([]core.Item, error) {
	desc = desc.withDefaults()
	if strings.TrimSpace(desc.Endpoint) == "" {
		return nil, ErrEndpointRequired
	}
	if desc.Kind == KindPage {
		return r.fetchPage(ctx, desc)
	}
	return r.fetchFeed(ctx, desc)
}

func (r *RSS) fetchFeed(ctx context.Context, desc Descriptor) ([]core.Item, error) {
	body, err := get(ctx, r.client, desc.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", desc.Key, err)
	}
	defer body.Close()

	doc, err := parseFeed(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", desc.Key, err)
	}

	now := r.now()
	cutoff := now.AddDate(0, 0, -desc.Window)

	var (
		items        []core.Item
		dateDropped  int
		topicDropped int
	)
	for _, entry := range doc.entries() {
		if len(items) >= desc.MaxItems {
			break
		}
		title := strings.TrimSpace(entry.title)
		if title == "" {
			continue
		}
		published := parsePublished(entry.published)
		if !published.IsZero() && published.Before(cutoff) {
			dateDropped++
			continue
		}
		description := cleanDescription(entry.description)
		if desc.Filter && !r.matcher.Match(title, description) {
			topicDropped++
			continue
		}
		key, err := core.NormalizeKey(entry.link)
		if err != nil {
			continue
		}
		if published.IsZero() {
			published = now
		}
		items = append(items, core.Item{
			Key:         key,
			URL:         strings.TrimSpace(entry.link),
			Title:       title,
			Description: description,
			Source:      desc.Key,
			Language:    desc.Language,
			Image:       entry.image(desc.ImageField),
			Published:   published,
			FetchedAt:   now,
			Relevant:    true,
		})
	}

	r.logDropped(desc, dateDropped, topicDropped)
	return items, nil
}

func (r *RSS) logDropped(desc Descriptor, dates, topics int) {
	if dates > 0 {
		r.logger.Debug("entries outside recency window skipped",
			"source", desc.Key, "skipped", dates, "windowDays", desc.Window)
	}
	if topics > 0 {
		r.logger.Debug("off-topic entries skipped",
			"source", desc.Key, "skipped", topics)
	}
}

// get issues one GET with the shared User-Agent and hands back the body on
// a 200.
func get(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}
