package curation

import (
	"context"
	"strings"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/decode"
	"github.com/poiesic/curator/workflow"
)

const fallbackSummaryRunes = 300

// annotateRow is one decoded annotation entry. The position pointer
// distinguishes a response that omits positions from one that claims
// position zero.
type annotateRow struct {
	I        *int     `json:"i"`
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Points   []string `json:"points"`
	Entities []string `json:"entities"`
	Cluster  string   `json:"cluster"`
}

func (r *annotateRow) annotation() *core.Annotation {
	return &core.Annotation{
		DisplayTitle: strings.TrimSpace(r.Title),
		Summary:      strings.TrimSpace(r.Summary),
		KeyPoints:    cleanStrings(r.Points),
		Entities:     cleanStrings(r.Entities),
		Cluster:      strings.TrimSpace(r.Cluster),
	}
}

func cleanStrings(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// annotateNativeStage annotates items already in the digest's language.
func (e *Engine) annotateNativeStage(ctx context.Context, s workflow.State) (workflow.State, error) {
	return e.annotate(ctx, s, true)
}

// annotateTranslateStage annotates and translates everything else.
func (e *Engine) annotateTranslateStage(ctx context.Context, s workflow.State) (workflow.State, error) {
	return e.annotate(ctx, s, false)
}

// annotate runs one annotation branch. The two branches partition the
// collection by language, so their updates write disjoint keys into the
// annotation channel and merge cleanly in either completion order.
func (e *Engine) annotate(ctx context.Context, s workflow.State, native bool) (workflow.State, error) {
	collected := channelValue[map[string][]core.Item](s, collectedChannel)

	var items []core.Item
	for _, desc := range e.config.Sources {
		for _, it := range collected[desc.Key] {
			if isNative(it.Language, e.config.Rank.NativeLanguage) == native {
				items = append(items, it)
			}
		}
	}
	if len(items) == 0 {
		return workflow.State{}, nil
	}

	size := e.config.TranslateBatch
	translateTo := e.config.TranslateTo
	branch := stageAnnotateTranslate
	if native {
		size = e.config.NativeBatch
		translateTo = ""
		branch = stageAnnotateNative
	}

	annotations := make([]*core.Annotation, len(items))
	fn := func(ctx context.Context, indices []int) ([]int, error) {
		prompt := buildAnnotatePrompt(translateTo, annotateLines(items, indices), len(indices))
		out, err := e.invoke(ctx, prompt,
			ai.WithTemperature(0),
			ai.WithMaxTokens(e.config.AnnotateMaxTokens),
			ai.WithStructuredOutput())
		if err != nil {
			return nil, err
		}
		var rows []annotateRow
		if err := decode.Into(out, &rows); err != nil {
			return nil, err
		}

		var satisfied []int
		apply := func(local int, row *annotateRow) {
			annotations[indices[local]] = row.annotation()
			satisfied = append(satisfied, indices[local])
		}
		positioned := 0
		for j := range rows {
			row := &rows[j]
			if row.I == nil {
				continue
			}
			if local := *row.I; 0 <= local && local < len(indices) {
				positioned++
				apply(local, row)
			}
		}
		// Position-less responses that still cover the batch map by order.
		if positioned == 0 && len(rows) == len(indices) {
			for j := range rows {
				apply(j, &rows[j])
			}
		}
		return satisfied, nil
	}
	fallback := func(i int) {
		annotations[i] = &core.Annotation{}
	}

	report, err := e.annotator.Run(ctx, len(items), size, fn, fallback)
	if err != nil {
		return nil, err
	}

	// Safety net: any required field the service left empty falls back to
	// the raw fields, so every item leaves with a display title and summary.
	update := make(map[string]*core.Annotation, len(items))
	for i := range items {
		ann := annotations[i]
		if ann == nil {
			ann = &core.Annotation{}
		}
		if ann.DisplayTitle == "" {
			ann.DisplayTitle = items[i].Title
		}
		if ann.Summary == "" {
			ann.Summary = clip(items[i].Description, fallbackSummaryRunes)
		}
		update[items[i].Key] = ann
	}

	e.logger.Info("annotation complete",
		"branch", branch, "items", len(items), "calls", report.Calls,
		"annotated", report.Satisfied, "fellBack", report.FellBack)
	return workflow.State{annotatedChannel: update}, nil
}

func isNative(language, native string) bool {
	return strings.EqualFold(language, native)
}
