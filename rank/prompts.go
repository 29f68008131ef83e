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
	"fmt"
	"strings"

	"github.com/poiesic/curator/core"
)

// DefaultCategories returns the three production categories in digest order.
// Classification checks them in this order and stops at the first match, so
// the most specific guides come first and the default catches the rest.
func DefaultCategories() []Category {
	return []Category{
		{
			Name: "research",
			Guide: `The main subject is a scientific or technical finding, method, or
evaluation: a paper or study published or presented, a new algorithm,
architecture, or training method, benchmark or SOTA results, a dataset
released for research purposes, a theoretical analysis, scaling law, or
survey. A paper with code or weights released alongside still belongs here.
NOT this category: calls for more research, strategy posts that cite papers,
industry reports and indexes, executives mentioning research in passing.`,
			Keys:    [3]string{"nov", "imp", "buzz"},
			Weights: [3]int{4, 3, 3},
			Rubric: `### Category: research -> score nov, imp, buzz (each 0-10 integer)
- nov (Novelty): how new is the work relative to prior art?
  2-3: minor variation of an existing method, incremental SOTA bump
  4-5: meaningful improvement on an existing framework, solid engineering
  6-7: clearly novel technique or architecture, significant SOTA jump
  8-10: redefines its subfield, opens a new direction, or solves a
  long-standing open problem
- imp (Rigor and impact): expected downstream influence on research and industry
  2-3: cited only within a narrow subfield, no industry relevance
  4-5: useful to adjacent subfields, some practitioner interest
  6-7: likely adopted across the field within a year
  8-10: reshapes how production systems are built
- buzz (Buzz): how much attention is the work drawing?
  2-3: quiet preprint
  4-5: active discussion among specialists
  6-7: trending across the research community
  8-10: mainstream coverage beyond the field`,
			Calibration: `"Attention-like architecture replaces transformers across tasks overnight" -> {"i":0,"nov":10,"imp":9,"buzz":9}
"Solid new training method with clear gains on standard benchmarks" -> {"i":1,"nov":6,"imp":6,"buzz":4}
"Survey of existing prompting techniques, no new results" -> {"i":2,"nov":1,"imp":2,"buzz":2}`,
			Example: `[{"i":0,"nov":4,"imp":6,"buzz":3}]`,
		},
		{
			Name: "models_products",
			Guide: `The article announces something users can download, access, or use:
model weights or an API released or updated, a new app, tool, platform, SDK,
or framework launched, an open-source release with a usable artifact, a new
feature, pricing, or availability change for an existing product. Key test:
can a developer or user DO something new after this announcement?
NOT this category: rumors or leaks about unreleased products, partnerships to
build something in the future, product comparisons and reviews.`,
			Keys:    [3]string{"uti", "imp", "acc"},
			Weights: [3]int{4, 3, 3},
			Rubric: `### Category: models_products -> score uti, imp, acc (each 0-10 integer)
- uti (Utility): how much real work does the release unlock?
  2-3: cosmetic update, niche tool, minor patch
  4-5: useful addition for an existing audience
  6-7: meaningfully expands what users can build
  8-10: unlocks workflows that were not practical before
- imp (Ecosystem impact): effect on the surrounding ecosystem
  2-3: no visible ripple beyond its own users
  4-5: competitors take note
  6-7: forces roadmap changes across the segment
  8-10: resets expectations for the whole product category
- acc (Access): who can actually use it today?
  2-3: waitlist, enterprise-only, or region-locked
  4-5: paid access with real limits
  6-7: broadly available at reasonable cost
  8-10: free or open weights, anyone can run it`,
			Calibration: `"Frontier-grade open weights anyone can run on a laptop" -> {"i":0,"uti":9,"imp":9,"acc":10}
"Popular IDE adds a useful AI refactoring feature" -> {"i":1,"uti":6,"imp":4,"acc":7}
"Minor version bump with bug fixes" -> {"i":2,"uti":2,"imp":1,"acc":6}`,
			Example: `[{"i":0,"uti":8,"imp":5,"acc":3}]`,
		},
		{
			Name: "industry_business",
			Guide: `Everything else: funding, M&A, regulation, corporate strategy, market
analysis, executive hires, opinions, events, partnerships, reports,
forecasts, lawsuits, policy.`,
			Keys:    [3]string{"mag", "sig", "brd"},
			Weights: [3]int{4, 3, 3},
			Rubric: `### Category: industry_business -> score mag, sig, brd (each 0-10 integer)
- mag (Magnitude): money and market size involved
  2-3: small round, local deal, routine event
  4-5: mid-size round or partnership
  6-7: major acquisition, unicorn round, big-cap earnings move
  8-10: industry-restructuring deal or regulation
- sig (Signal): what does it reveal about where the market is going?
  2-3: routine operations, no new information
  4-5: mildly informative positioning
  6-7: clear strategic shift by a major player
  8-10: redraws the competitive map
- brd (Breadth): how many stakeholders does it touch?
  2-3: a single company
  4-5: one market segment
  6-7: several industries or a national market
  8-10: global, cross-industry reach`,
			Calibration: `"Top chipmaker acquires leading AI lab, regulators respond" -> {"i":0,"mag":9,"sig":9,"brd":9}
"Mid-size startup raises a healthy B round" -> {"i":1,"mag":5,"sig":4,"brd":3}
"Local AI meetup event announcement" -> {"i":2,"mag":1,"sig":1,"brd":1}`,
			Example: `[{"i":0,"mag":3,"sig":7,"brd":5}]`,
		},
	}
}

const classifyTemplate = `Output ONLY a JSON array. No markdown, no explanation. Start with '['.

Classify each article into exactly ONE category: %s.
Check the categories in order and stop at the first match.

%s
Articles:
%s

Output exactly %d JSON object(s):
[{"i":0,"cat":"<category>"}]`

func buildClassifyPrompt(categories []Category, defaultName, lines string, count int) string {
	names := make([]string, len(categories))
	var guides strings.Builder
	for i, cat := range categories {
		names[i] = cat.Name
		header := cat.Name
		if cat.Name == defaultName {
			header += " (default: pick this when nothing above matches)"
		}
		fmt.Fprintf(&guides, "## %s\n%s\n\n", header, cat.Guide)
	}
	return fmt.Sprintf(classifyTemplate, strings.Join(names, ", "), guides.String(), lines, count)
}

const scoreTemplate = `Output ONLY a single-line compact JSON array. No markdown, no explanation. Start with '['.

Score each article on its assigned category dimensions (0-10 integers). Use ONLY the provided text.

USE THE FULL 1-10 RANGE. A score of 5 is mediocre, not average. Routine
updates and vague rumors score 2-4, decent but unremarkable work scores 5-6,
genuinely notable items score 7-8, and 9-10 is reserved for the exceptional.
Do not hedge everything into 5-7: if the article is weak, score it low.

%s

## Calibration examples (absolute anchors)
%s

Articles:
%s

Output exactly %d JSON object(s) as a single-line compact JSON array:
%s`

func buildScorePrompt(cat Category, lines string, count int) string {
	return fmt.Sprintf(scoreTemplate, cat.Rubric, cat.Calibration, lines, count, cat.Example)
}

const rankTemplate = `Output ONLY a JSON array of integers. No markdown, no explanation. Start with '['.

Rank the %d articles of the "%s" category below from most to least important
for today's digest. Judge importance with this rubric (rank order only, do
not output sub-scores):

%s

Articles:
%s

Output every index from 0 to %d exactly once, most important first:
[2,0,1,...]`

func buildRankPrompt(cat Category, lines string, count int) string {
	return fmt.Sprintf(rankTemplate, count, cat.Name, cat.Rubric, lines, count-1)
}

// articleLines renders the numbered article list of one service call. The
// numbering restarts at zero per call; callers map local positions back to
// their own indices.
func articleLines(items []core.Item, positions []int) string {
	var b strings.Builder
	for j, p := range positions {
		it := &items[p]
		title := it.Title
		if it.Annotation != nil && strings.TrimSpace(it.Annotation.DisplayTitle) != "" {
			title = it.Annotation.DisplayTitle
		}
		context := clip(it.Body, 500)
		if context == "" {
			context = clip(it.Description, 200)
		}
		fmt.Fprintf(&b, "\n[%d] %s | %s", j, title, context)
	}
	return b.String()
}

// clip collapses whitespace and truncates to max runes.
func clip(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
