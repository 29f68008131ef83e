// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/curator/core"
)

func scored(key, category string, score float64, published time.Time, recent bool) core.Item {
	it := candidate(key, "Title for "+key)
	it.Category = category
	it.Score = score
	it.Published = published
	it.Recent = recent
	return it
}

func keysOf(items []core.Item) []string {
	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = it.Key
	}
	return keys
}

func TestSelect_RecentGuaranteeAndDisplayOrder(t *testing.T) {
	cfg := testConfig()
	cfg.Limit = 5
	cfg.MinRecent = 2
	cfg.MinCategory = 1

	yesterday := base.Add(-30 * time.Hour)
	items := []core.Item{
		scored("o1.example.com/a", "research", 90, yesterday, false),
		scored("o2.example.com/b", "research", 85, yesterday, false),
		scored("o3.example.com/c", "research", 80, yesterday, false),
		scored("o4.example.com/d", "research", 75, yesterday, false),
		scored("r1.example.com/e", "research", 30, base, true),
		scored("r2.example.com/f", "research", 20, base, true),
	}

	selected := Select(items, cfg)
	picked := selected["research"]
	require.Len(t, picked, 5)

	// Both recent items survive despite low scores, and the day bucket puts
	// them ahead of yesterday's higher-ranked stories.
	assert.Equal(t, []string{
		"r1.example.com/e", "r2.example.com/f",
		"o1.example.com/a", "o2.example.com/b", "o3.example.com/c",
	}, keysOf(picked))
}

func TestSelect_BackfillsRecentGuaranteeByScore(t *testing.T) {
	cfg := testConfig()
	cfg.Limit = 3
	cfg.MinRecent = 3
	cfg.MinCategory = 1

	yesterday := base.Add(-30 * time.Hour)
	items := []core.Item{
		scored("r1.example.com/a", "research", 10, base, true),
		scored("o1.example.com/b", "research", 90, yesterday, false),
		scored("o2.example.com/c", "research", 80, yesterday, false),
		scored("o3.example.com/d", "research", 70, yesterday, false),
		scored("o4.example.com/e", "research", 60, yesterday, false),
	}

	selected := Select(items, cfg)
	picked := selected["research"]
	require.Len(t, picked, 3)

	// One recent item exists; the other guaranteed slots go to the next
	// highest scores instead.
	assert.Equal(t, []string{
		"r1.example.com/a", "o1.example.com/b", "o2.example.com/c",
	}, keysOf(picked))
}

func TestSelect_CapsAtLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Limit = 2
	cfg.MinRecent = 1
	cfg.MinCategory = 1

	items := []core.Item{
		scored("a.example.com/1", "research", 60, base, true),
		scored("b.example.com/2", "research", 90, base, true),
		scored("c.example.com/3", "research", 80, base, true),
		scored("d.example.com/4", "research", 70, base, true),
	}

	picked := Select(items, cfg)["research"]
	require.Len(t, picked, 2)
	assert.Equal(t, []string{"b.example.com/2", "c.example.com/3"}, keysOf(picked))
}

func TestSelect_SupplementsShortCategoryFromDuplicates(t *testing.T) {
	cfg := testConfig()
	cfg.MinCategory = 5

	items := []core.Item{
		scored("a.example.com/1", "research", 80, base, true),
		scored("b.example.com/2", "research", 70, base, true),
		scored("c.example.com/3", "research", 60, base, true),
	}
	for i, score := range []float64{90, 50, 40} {
		dup := scored([]string{"d.example.com/4", "e.example.com/5", "f.example.com/6"}[i],
			"research", score, base, true)
		dup.Duplicate = true
		dup.Origin = "a.example.com/1"
		items = append(items, dup)
	}

	picked := Select(items, cfg)["research"]
	require.Len(t, picked, 5, "short category borrows duplicates up to the minimum")

	assert.Equal(t, []string{
		"d.example.com/4", "a.example.com/1", "b.example.com/2",
		"c.example.com/3", "e.example.com/5",
	}, keysOf(picked))

	borrowed := picked[0]
	assert.True(t, borrowed.Duplicate, "borrowed items keep their duplicate mark")
	assert.Equal(t, "a.example.com/1", borrowed.Origin)
}

func TestSelect_UnknownCategoryFoldsToDefault(t *testing.T) {
	cfg := testConfig()
	cfg.MinCategory = 1

	items := []core.Item{
		scored("a.example.com/1", "misc", 50, base, true),
		scored("b.example.com/2", "", 40, base, true),
	}

	selected := Select(items, cfg)
	assert.Empty(t, selected["research"])
	assert.Empty(t, selected["models_products"])
	assert.Equal(t, []string{"a.example.com/1", "b.example.com/2"},
		keysOf(selected["industry_business"]))
}

func TestSelect_AllCategoriesPresent(t *testing.T) {
	selected := Select(nil, testConfig())
	require.Len(t, selected, 3)
	for _, name := range []string{"research", "models_products", "industry_business"} {
		assert.Contains(t, selected, name)
		assert.Empty(t, selected[name])
	}
}

func TestHighlights_PicksTopRecentAnnotatedPerCategory(t *testing.T) {
	cfg := testConfig()

	annotated := func(key, category string, score float64, recent bool) core.Item {
		it := scored(key, category, score, base, recent)
		it.Annotation = &core.Annotation{DisplayTitle: "Rewritten: " + it.Title}
		return it
	}

	plain := scored("b.example.com/2", "research", 95, base, true) // no annotation
	stale := annotated("c.example.com/3", "research", 99, false)   // not recent

	selected := map[string][]core.Item{
		"research": {
			annotated("a.example.com/1", "research", 80, true),
			plain,
			stale,
		},
		"models_products": {
			annotated("d.example.com/4", "models_products", 55, true),
		},
		"industry_business": {
			scored("e.example.com/5", "industry_business", 88, base, false),
		},
	}

	highlights := Highlights(selected, cfg)
	require.Len(t, highlights, 2, "industry has no recent annotated candidate")

	assert.Equal(t, "a.example.com/1", highlights[0].Key,
		"unannotated and stale items lose to the annotated recent one")
	assert.Equal(t, "d.example.com/4", highlights[1].Key)
}

func TestHighlights_NativeLanguageKeepsUnchangedTitle(t *testing.T) {
	cfg := testConfig()

	it := scored("a.example.com/1", "research", 70, base, true)
	it.Language = "ko"
	// No annotation at all: for native-language items the raw title is
	// already presentable.
	selected := map[string][]core.Item{"research": {it}}

	highlights := Highlights(selected, cfg)
	require.Len(t, highlights, 1)
	assert.Equal(t, "a.example.com/1", highlights[0].Key)
}

func TestHighlights_EmptySelection(t *testing.T) {
	assert.Empty(t, Highlights(map[string][]core.Item{}, testConfig()))
}
