package curation

import (
	"context"

	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/dedup"
	"github.com/poiesic/curator/rank"
	"github.com/poiesic/curator/workflow"
)

// dedupeStage tags duplicate items in the category collection. Nothing is
// removed here: suppressed items keep flowing with their origin reference
// and stay available to backfill undersized categories.
func (e *Engine) dedupeStage(ctx context.Context, s workflow.State) (workflow.State, error) {
	items := channelValue[[]core.Item](s, itemsChannel)
	return workflow.State{itemsChannel: markDuplicates(ctx, e.deduper, items)}, nil
}

// markDuplicates dedupes the relevant slice of a collection. Items the
// relevance filter excluded pass through untouched: an item that can never
// display must not become another item's representative.
func markDuplicates(ctx context.Context, deduper *dedup.Engine, items []core.Item) []core.Item {
	eligible := make([]core.Item, 0, len(items))
	var rest []core.Item
	for _, it := range items {
		if it.Relevant {
			eligible = append(eligible, it)
			continue
		}
		rest = append(rest, it)
	}
	return append(deduper.Run(ctx, eligible), rest...)
}

// selectStage picks each category's display set and the highlights. Items
// the relevance filter marked compete nowhere; highlights additionally come
// only from sources flagged for them.
func (e *Engine) selectStage(ctx context.Context, s workflow.State) (workflow.State, error) {
	items := channelValue[[]core.Item](s, itemsChannel)

	pool := make([]core.Item, 0, len(items))
	for _, it := range items {
		if it.Relevant {
			pool = append(pool, it)
		}
	}

	selected := rank.Select(pool, e.config.Rank)

	eligible := make(map[string][]core.Item, len(selected))
	for name, picked := range selected {
		for _, it := range picked {
			if e.highlightable[it.Source] {
				eligible[name] = append(eligible[name], it)
			}
		}
	}
	highlights := rank.Highlights(eligible, e.config.Rank)

	displayed := 0
	for _, picked := range selected {
		displayed += len(picked)
	}
	e.logger.Info("selection complete",
		"pool", len(pool), "displayed", displayed, "highlights", len(highlights))

	return workflow.State{
		selectedChannel:   selected,
		highlightsChannel: highlights,
	}, nil
}
