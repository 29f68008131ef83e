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

package curation

import (
	"context"
	"slices"
	"strings"

	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/workflow"
)

// assembleStage builds the digest document: category sections from the
// selection, per-source sections from the section-role collection, and the
// highlights. Section sources syndicate overlapping stories, so their items
// go through one cross-source dedupe pass before being split back by
// source, ordered newest first and capped.
func (e *Engine) assembleStage(ctx context.Context, s workflow.State) (workflow.State, error) {
	selected := channelValue[map[string][]core.Item](s, selectedChannel)
	highlights := channelValue[[]core.Item](s, highlightsChannel)
	sections := channelValue[[]core.Item](s, sectionsChannel)

	now := e.now()
	digest := &core.Digest{
		Date:       now.In(e.config.Location).Format(dateLayout),
		Highlights: highlights,
		UpdatedAt:  now.UTC(),
	}

	for _, cat := range e.config.Rank.Categories {
		picked := selected[cat.Name]
		if len(picked) == 0 {
			continue
		}
		if digest.Categories == nil {
			digest.Categories = make(map[string][]core.Item, len(e.config.Rank.Categories))
		}
		digest.Categories[cat.Name] = picked
		digest.CategoryOrder = append(digest.CategoryOrder, cat.Name)
		digest.TotalCount += len(picked)
	}

	marked := markDuplicates(ctx, e.sectionDeduper, sections)
	bySource := make(map[string][]core.Item, len(e.config.Sources))
	for _, it := range marked {
		if it.Duplicate || !it.Relevant {
			continue
		}
		bySource[it.Source] = append(bySource[it.Source], it)
	}
	for _, desc := range e.config.Sources {
		items := bySource[desc.Key]
		if len(items) == 0 {
			continue
		}
		slices.SortStableFunc(items, func(a, b core.Item) int {
			if a.Published.After(b.Published) {
				return -1
			}
			if b.Published.After(a.Published) {
				return 1
			}
			return strings.Compare(a.Key, b.Key)
		})
		if len(items) > e.config.SectionLimit {
			items = items[:e.config.SectionLimit]
		}
		if digest.Sources == nil {
			digest.Sources = make(map[string][]core.Item, len(bySource))
		}
		digest.Sources[desc.Key] = items
		digest.SourceOrder = append(digest.SourceOrder, desc.Key)
	}

	e.logger.Info("digest assembled",
		"date", digest.Date, "categories", len(digest.Categories),
		"sources", len(digest.Sources), "total", digest.TotalCount)

	// The marked section set goes back on its channel so the run's result
	// carries every collected item with its final tags.
	return workflow.State{
		digestChannel:   digest,
		sectionsChannel: marked,
	}, nil
}
