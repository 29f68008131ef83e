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
	"fmt"
	"strings"

	"github.com/poiesic/curator/core"
)

const filterStrictTemplate = `Output ONLY a JSON array of integers. No markdown, no explanation. Start with '['.

You are filtering news articles from a general-interest outlet. Return the
indices of articles with a meaningful connection to AI or the tech industry.

Decision rule: ask "does this article have real AI or tech substance?" If
yes, include it. When in doubt, include.

INCLUDE:
- Model releases, benchmarks, research results
- AI products, tools, frameworks and their features
- AI regulation, policy, ethics
- Funding, M&A and partnerships involving AI companies
- Chips, GPUs and computing infrastructure
- AI adoption and its impact on jobs, education, society

EXCLUDE:
- Subjects using AI as a passing buzzword with no substance
- Celebrity, entertainment or politics with no tech angle
- Promotional or regional-marketing pieces

Articles:
%s

Return the indices of matching articles as a JSON array:
[0, 2, 5]`

const filterLenientTemplate = `Output ONLY a JSON array of integers. No markdown, no explanation. Start with '['.

You are filtering articles from a tech-focused outlet, so apply a VERY
lenient filter: include everything unless it is clearly unrelated to
technology.

Decision rule: ask "could this interest someone who follows AI and tech?"
If yes, include it. When in doubt, ALWAYS include.

EXCLUDE only:
- Pure lifestyle, sports or celebrity content
- Non-tech politics or social issues
- Articles with zero tech connection

Articles:
%s

Return the indices as a JSON array:
[0, 2, 5]`

// buildFilterPrompt renders the relevance-filter prompt for one source.
// Sources that already passed a keyword pre-filter are broad general-media
// feeds and get the strict variant; dedicated tech sources get the lenient
// one.
func buildFilterPrompt(strict bool, lines string) string {
	if strict {
		return fmt.Sprintf(filterStrictTemplate, lines)
	}
	return fmt.Sprintf(filterLenientTemplate, lines)
}

// filterLines renders the numbered title list of one filter call.
func filterLines(items []core.Item) string {
	var b strings.Builder
	for j := range items {
		it := &items[j]
		fmt.Fprintf(&b, "\n[%d] %s | %s", j, it.Title, clip(it.Description, 150))
	}
	return b.String()
}

const annotateTemplate = `Output ONLY a JSON array. No markdown, no explanation. Start with '['.

Annotate each article below for a daily digest. For every article produce:
- "title": a clear, specific display headline%[1]s
- "summary": one sentence stating the concrete development%[1]s
- "points": 2-4 short factual statements from the text%[1]s
- "entities": the companies, products, models and people named (up to 8 strings, original spelling)
- "cluster": a 2-5 word English label for the underlying event, chosen so
  that two articles about the same event get the same label

Use ONLY the provided text. Never invent facts, numbers or names.

Articles:
%[2]s

Output exactly %[3]d JSON object(s):
[{"i":0,"title":"...","summary":"...","points":["..."],"entities":["..."],"cluster":"..."}]`

// buildAnnotatePrompt renders the annotation prompt for one batch.
// translateTo, when non-empty, asks for the written fields in that language;
// an empty value keeps them in the article's own language.
func buildAnnotatePrompt(translateTo, lines string, count int) string {
	language := ""
	if translateTo != "" {
		language = ", written in " + translateTo
	}
	return fmt.Sprintf(annotateTemplate, language, lines, count)
}

// annotateLines renders the numbered article list of one annotation call.
// Annotation rewrites the text, so each entry carries more context than the
// classification and ranking prompts do.
func annotateLines(items []core.Item, indices []int) string {
	var b strings.Builder
	for j, i := range indices {
		it := &items[i]
		context := clip(it.Body, 1200)
		if context == "" {
			context = clip(it.Description, 300)
		}
		fmt.Fprintf(&b, "\n[%d] %s\n%s\n", j, it.Title, context)
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
