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


package storage

import (
	"slices"
	"sort"

	"github.com/poiesic/curator/core"
)

// MergeDigests combines a previously stored digest with the output of a newer
// run for the same date. The newer run wins wherever the two overlap:
//
//   - Category and source sections union by natural key. An item present in
//     both runs keeps the newer version; an item the newer run placed in a
//     different category is removed from its old one.
//   - Section orders follow the newer run, with sections that only the stored
//     digest still has appended after.
//   - Highlights and warnings follow the newer run when it produced any, and
//     otherwise keep the stored ones.
//   - Error logs concatenate; timings union per stage with newer values
//     winning; TotalCount is recomputed from the merged category sections.
//
// Neither input is mutated. With a nil stored digest the newer run is returned
// as a fresh document with its count recomputed.
func MergeDigests(stored, next *core.Digest) *core.Digest {
	if stored == nil {
		merged := *next
		merged.TotalCount = sectionTotal(merged.Categories)
		return &merged
	}

	merged := &core.Digest{
		Date:      next.Date,
		UpdatedAt: next.UpdatedAt,
	}

	merged.Highlights = next.Highlights
	if len(merged.Highlights) == 0 {
		merged.Highlights = stored.Highlights
	}
	merged.Warnings = next.Warnings
	if len(merged.Warnings) == 0 {
		merged.Warnings = stored.Warnings
	}

	merged.Categories = mergeSections(stored.Categories, next.Categories)
	merged.CategoryOrder = mergeOrder(stored.CategoryOrder, next.CategoryOrder, merged.Categories)
	merged.Sources = mergeSections(stored.Sources, next.Sources)
	merged.SourceOrder = mergeOrder(stored.SourceOrder, next.SourceOrder, merged.Sources)

	merged.Errors = append(slices.Clone(stored.Errors), next.Errors...)

	merged.Timings = make(map[string]float64, len(stored.Timings)+len(next.Timings))
	for stage, secs := range stored.Timings {
		merged.Timings[stage] = secs
	}
	for stage, secs := range next.Timings {
		merged.Timings[stage] = secs
	}

	merged.TotalCount = sectionTotal(merged.Categories)
	return merged
}

// mergeSections unions keyed item sections. Every item of the newer run is
// kept under the section the newer run chose; stored items survive only if
// the newer run placed their key nowhere, which removes stale entries when a
// key moved between sections.
func mergeSections(stored, next map[string][]core.Item) map[string][]core.Item {
	placed := make(map[string]bool)
	for _, items := range next {
		for _, it := range items {
			placed[it.Key] = true
		}
	}

	merged := make(map[string][]core.Item, len(next))
	for name, items := range next {
		merged[name] = slices.Clone(items)
	}
	for name, items := range stored {
		for _, it := range items {
			if placed[it.Key] {
				continue
			}
			merged[name] = append(merged[name], it)
		}
	}
	return merged
}

// mergeOrder lists the merged sections in the newer run's order, appends
// sections only the stored order knows, and finally any section neither
// order names, alphabetically so the result is deterministic.
func mergeOrder(stored, next []string, sections map[string][]core.Item) []string {
	order := make([]string, 0, len(sections))
	seen := make(map[string]bool, len(sections))
	for _, names := range [][]string{next, stored} {
		for _, name := range names {
			if _, ok := sections[name]; !ok || seen[name] {
				continue
			}
			order = append(order, name)
			seen[name] = true
		}
	}

	var unlisted []string
	for name := range sections {
		if !seen[name] {
			unlisted = append(unlisted, name)
		}
	}
	sort.Strings(unlisted)
	return append(order, unlisted...)
}

// sectionTotal counts the entries across a digest's category sections. Keys
// are unique across merged sections, so the sum equals the distinct count.
func sectionTotal(sections map[string][]core.Item) int {
	total := 0
	for _, items := range sections {
		total += len(items)
	}
	return total
}
