package curation

import (
	"context"
	"slices"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/decode"
	"github.com/poiesic/curator/workflow"
)

const filterMaxTokens = 2048

// filterStage marks off-topic items, one generation call per source, run in
// parallel on the filter pool. Items are marked, never removed: an item the
// service excludes keeps flowing with Relevant cleared and is skipped at
// selection. A source whose call fails past retries falls back to the
// keyword matcher, so a service outage degrades to the cheap filter instead
// of suppressing everything.
func (e *Engine) filterStage(ctx context.Context, s workflow.State) (workflow.State, error) {
	collected := channelValue[map[string][]core.Item](s, collectedChannel)

	keys := make([]string, 0, len(collected))
	for _, desc := range e.config.Sources {
		if len(collected[desc.Key]) > 0 {
			keys = append(keys, desc.Key)
		}
	}
	if len(keys) == 0 {
		return workflow.State{}, nil
	}

	filtered := make(map[string][]core.Item, len(collected))
	for key, items := range collected {
		filtered[key] = slices.Clone(items)
	}

	fn := func(ctx context.Context, indices []int) ([]int, error) {
		var done []int
		for _, i := range indices {
			key := keys[i]
			keep, err := e.filterSource(ctx, e.descriptors[key].Filter, filtered[key])
			if err != nil {
				return done, err
			}
			applyRelevance(filtered[key], keep)
			done = append(done, i)
		}
		return done, nil
	}
	fallback := func(i int) {
		items := filtered[keys[i]]
		keep := make(map[int]bool, len(items))
		for j := range items {
			if e.matcher.Match(items[j].Title, items[j].Description) {
				keep[j] = true
			}
		}
		applyRelevance(items, keep)
	}

	report, err := e.filters.Run(ctx, len(keys), 1, fn, fallback)
	if err != nil {
		return nil, err
	}

	marked := 0
	for _, items := range filtered {
		for i := range items {
			if !items[i].Relevant {
				marked++
			}
		}
	}
	e.logger.Info("relevance filter complete",
		"sources", len(keys), "calls", report.Calls,
		"keywordFallback", report.FellBack, "marked", marked)
	return workflow.State{collectedChannel: filtered}, nil
}

// filterSource asks the service which items of one source to keep and
// returns their indices.
func (e *Engine) filterSource(ctx context.Context, strict bool, items []core.Item) (map[int]bool, error) {
	prompt := buildFilterPrompt(strict, filterLines(items))
	out, err := e.invoke(ctx, prompt,
		ai.WithTemperature(0),
		ai.WithMaxTokens(filterMaxTokens),
		ai.WithStructuredOutput())
	if err != nil {
		return nil, err
	}
	var indices []int
	if err := decode.Into(out, &indices); err != nil {
		return nil, err
	}
	keep := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if 0 <= idx && idx < len(items) {
			keep[idx] = true
		}
	}
	return keep, nil
}

func applyRelevance(items []core.Item, keep map[int]bool) {
	for i := range items {
		items[i].Relevant = keep[i]
	}
}
