package curation

import (
	"context"
	"time"

	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/feeds"
	"github.com/poiesic/curator/workflow"
)

const dateLayout = "2006-01-02"

// fetchStage collects every configured source, enriches the items with
// scraped bodies and images, drops imageless items from category-role
// sources, and marks recency. Failed sources contribute empty buckets.
func (e *Engine) fetchStage(ctx context.Context, s workflow.State) (workflow.State, error) {
	collected, err := feeds.FetchAll(ctx, e.fetcher, e.config.Sources, feeds.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}

	if e.scraper != nil {
		for key := range collected {
			if err := e.scraper.Enrich(ctx, collected[key]); err != nil {
				return nil, err
			}
		}
	}

	// Category sections render as image cards, so imageless items are
	// dropped there once enrichment had its chance. Per-source sections
	// render as plain lists and keep everything.
	cards := make(map[string][]core.Item, len(collected))
	for key, items := range collected {
		if e.descriptors[key].Role == feeds.RoleCategory {
			cards[key] = items
		}
	}
	dropped := feeds.FilterImageless(cards)
	for key, items := range cards {
		collected[key] = items
	}

	total := 0
	for _, items := range collected {
		markRecent(items, e.now(), e.config.Location)
		total += len(items)
	}

	e.logger.Info("fetch complete",
		"sources", len(collected), "items", total, "imageless", dropped)
	return workflow.State{collectedChannel: collected}, nil
}

// markRecent flags items published today or yesterday on the digest's
// clock. The recency guarantee of selection and the highlight gate both
// read this flag.
func markRecent(items []core.Item, now time.Time, loc *time.Location) {
	today := now.In(loc).Format(dateLayout)
	yesterday := now.In(loc).AddDate(0, 0, -1).Format(dateLayout)
	for i := range items {
		if items[i].Published.IsZero() {
			items[i].Recent = false
			continue
		}
		day := items[i].Published.In(loc).Format(dateLayout)
		items[i].Recent = day == today || day == yesterday
	}
}
