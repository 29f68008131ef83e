package rank

import (
	"cmp"
	"slices"
	"strings"

	"github.com/poiesic/curator/core"
)

// Select picks each category's display set from the ranked collection.
//
// Per category: non-duplicate items compete, recent ones get a guaranteed
// minimum backfilled by score when there are too few, the remaining capacity
// fills purely by score, and the result sorts by (day bucket, score, exact
// time) descending. A category that still comes up short of the configured
// minimum borrows the highest-scoring suppressed duplicates assigned to it.
// Items with an unknown or empty category compete in the default category.
func Select(items []core.Item, config Config) map[string][]core.Item {
	config = config.withDefaults()

	known := make(map[string]bool, len(config.Categories))
	for _, cat := range config.Categories {
		known[cat.Name] = true
	}

	pools := make(map[string][]core.Item)
	duplicates := make(map[string][]core.Item)
	for _, it := range items {
		name := it.Category
		if !known[name] {
			name = config.DefaultCategory
		}
		if it.Duplicate {
			duplicates[name] = append(duplicates[name], it)
			continue
		}
		pools[name] = append(pools[name], it)
	}

	selected := make(map[string][]core.Item, len(config.Categories))
	for _, cat := range config.Categories {
		picked := selectCategory(pools[cat.Name], config)
		if len(picked) < config.MinCategory {
			picked = append(picked, topUp(duplicates[cat.Name], config.MinCategory-len(picked))...)
			sortForDisplay(picked)
		}
		selected[cat.Name] = picked
	}
	return selected
}

// selectCategory applies the recent guarantee and score fill to one pool.
func selectCategory(pool []core.Item, config Config) []core.Item {
	if len(pool) == 0 {
		return nil
	}
	byScore := slices.Clone(pool)
	sortByScore(byScore)

	taken := make(map[string]bool, config.Limit)
	picked := make([]core.Item, 0, min(len(pool), config.Limit))
	take := func(it core.Item) {
		if taken[it.Key] {
			return
		}
		taken[it.Key] = true
		picked = append(picked, it)
	}

	// Guaranteed slots prefer recent items; the best of the rest backfill
	// when there are not enough of them.
	for _, it := range byScore {
		if len(picked) >= config.MinRecent || len(picked) >= config.Limit {
			break
		}
		if it.Recent {
			take(it)
		}
	}
	for _, it := range byScore {
		if len(picked) >= config.MinRecent || len(picked) >= config.Limit {
			break
		}
		take(it)
	}

	// Remaining capacity fills purely by score.
	for _, it := range byScore {
		if len(picked) >= config.Limit {
			break
		}
		take(it)
	}

	sortForDisplay(picked)
	return picked
}

// topUp returns the best n duplicates for supplementing a short category.
// Borrowed items keep their Duplicate mark and Origin reference.
func topUp(duplicates []core.Item, n int) []core.Item {
	if n <= 0 || len(duplicates) == 0 {
		return nil
	}
	pool := slices.Clone(duplicates)
	sortByScore(pool)
	if len(pool) > n {
		pool = pool[:n]
	}
	return pool
}

// sortByScore orders by score descending, publish time then key breaking
// ties so reruns pick the same items.
func sortByScore(items []core.Item) {
	slices.SortStableFunc(items, func(a, b core.Item) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if a.Published.After(b.Published) {
			return -1
		}
		if b.Published.After(a.Published) {
			return 1
		}
		return strings.Compare(a.Key, b.Key)
	})
}

// sortForDisplay orders by (day bucket, score, exact time) descending: a
// fresh low-ranked item outranks yesterday's top story, and within one day
// the score decides.
func sortForDisplay(items []core.Item) {
	slices.SortStableFunc(items, func(a, b core.Item) int {
		if c := strings.Compare(core.DateKey(b.Published), core.DateKey(a.Published)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if a.Published.After(b.Published) {
			return -1
		}
		if b.Published.After(a.Published) {
			return 1
		}
		return strings.Compare(a.Key, b.Key)
	})
}

// Highlights picks at most one item per category: the highest-scoring recent
// item that went through annotation. Items whose display title still equals
// the raw title are skipped as unannotated, unless they are in the native
// language, where an unchanged title is expected.
func Highlights(selected map[string][]core.Item, config Config) []core.Item {
	config = config.withDefaults()
	var highlights []core.Item
	for _, cat := range config.Categories {
		items := selected[cat.Name]
		best := -1
		for i := range items {
			it := &items[i]
			if !it.Recent {
				continue
			}
			if !it.Annotated() && !strings.EqualFold(it.Language, config.NativeLanguage) {
				continue
			}
			if best == -1 || it.Score > items[best].Score {
				best = i
			}
		}
		if best >= 0 {
			highlights = append(highlights, items[best])
		}
	}
	return highlights
}
