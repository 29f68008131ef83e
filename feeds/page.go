package feeds

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/poiesic/curator/core"
)

var listingDateExpr = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}`)

// fetchPage scrapes an HTML listing page: each headline is an <h3> inside
// an anchor, with the publication date in a nearby <span> as YYYY.MM.DD.
// Relative links resolve against the endpoint.
func (r *RSS) fetchPage(ctx context.Context, desc Descriptor) ([]core.Item, error) {
	base, err := url.Parse(desc.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: endpoint: %w", desc.Key, err)
	}

	body, err := get(ctx, r.client, desc.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", desc.Key, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
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
	doc.Find("h3").EachWithBreak(func(_ int, h3 *goquery.Selection) bool {
		if len(items) >= desc.MaxItems {
			return false
		}
		anchor := h3.Closest("a")
		href, ok := anchor.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return true
		}
		title := strings.TrimSpace(h3.Text())
		if title == "" {
			return true
		}

		link := href
		if ref, err := url.Parse(href); err == nil {
			link = base.ResolveReference(ref).String()
		}

		published := listingDate(anchor)
		if !published.IsZero() && published.Before(cutoff) {
			dateDropped++
			return true
		}
		if desc.Filter && !r.matcher.Match(title, "") {
			topicDropped++
			return true
		}
		key, err := core.NormalizeKey(link)
		if err != nil {
			return true
		}
		if published.IsZero() {
			published = now
		}
		items = append(items, core.Item{
			Key:       key,
			URL:       link,
			Title:     title,
			Source:    desc.Key,
			Language:  desc.Language,
			Published: published,
			FetchedAt: now,
			Relevant:  true,
		})
		return true
	})

	r.logDropped(desc, dateDropped, topicDropped)
	return items, nil
}

// listingDate scans the spans around the headline anchor for a date stamp,
// inside the anchor first so sibling articles cannot bleed into each other.
func listingDate(anchor *goquery.Selection) time.Time {
	if t := spanDate(anchor.Find("span")); !t.IsZero() {
		return t
	}
	return spanDate(anchor.Parent().Find("span"))
}

func spanDate(spans *goquery.Selection) time.Time {
	var found time.Time
	spans.EachWithBreak(func(_ int, span *goquery.Selection) bool {
		m := listingDateExpr.FindString(strings.TrimSpace(span.Text()))
		if m == "" {
			return true
		}
		if t, err := time.Parse("2006.01.02", m); err == nil {
			found = t.UTC()
			return false
		}
		return true
	})
	return found
}
