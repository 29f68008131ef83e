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
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/batch"
	"github.com/poiesic/curator/core"
)

// Report summarizes one ranking pass.
type Report struct {
	Ranked   int // items scored by the service
	FellBack int // items scored by a deterministic fallback
	Calls    int // generation calls made
}

// Coverage is the fraction of items the service ranked, 1 for an empty pass.
// The pipeline re-runs low-coverage passes with smaller batches.
func (r Report) Coverage() float64 {
	total := r.Ranked + r.FellBack
	if total == 0 {
		return 1
	}
	return float64(r.Ranked) / float64(total)
}

// Ranker assigns every classified item a 0-100 score.
type Ranker struct {
	gen     ai.Generator
	invoker *batch.Invoker
	limiter *batch.Limiter
	config  Config
	logger  *slog.Logger
}

// NewRanker creates a ranker with its own worker pool on the shared rate
// limiter. Callers must Release it when done.
func NewRanker(gen ai.Generator, limiter *batch.Limiter, config Config, opts ...Option) (*Ranker, error) {
	if gen == nil {
		return nil, ErrGeneratorRequired
	}
	if limiter == nil {
		return nil, ErrLimiterRequired
	}
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	o := applyOptions(opts...)
	invoker, err := batch.NewInvoker(o.poolSize, limiter)
	if err != nil {
		return nil, fmt.Errorf("create batch invoker: %w", err)
	}
	return &Ranker{
		gen:     gen,
		invoker: invoker,
		limiter: limiter,
		config:  config,
		logger:  o.logger.With("component", "rank"),
	}, nil
}

// Release releases the worker pool. The ranker must not be used after.
func (r *Ranker) Release() {
	r.invoker.Release()
}

// RankOption adjusts a single Rank pass.
type RankOption func(*rankPass)

type rankPass struct {
	batchSize int
}

// WithBatchSize overrides the scored-mode batch size for one pass. Coverage
// retries halve it down to single-item calls.
func WithBatchSize(n int) RankOption {
	return func(p *rankPass) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// Rank scores every item in place, one category at a time. Direct mode asks
// for one importance permutation per category; scored mode asks for rubric
// sub-scores per batch. Both fall back when the service cannot produce a
// usable answer, so every item always leaves with a score.
func (r *Ranker) Rank(ctx context.Context, items []core.Item, opts ...RankOption) (Report, error) {
	pass := rankPass{batchSize: r.config.ScoreBatchSize}
	for _, opt := range opts {
		opt(&pass)
	}

	var report Report
	for _, g := range r.groupByCategory(items) {
		var err error
		switch r.config.Mode {
		case ModeScored:
			err = r.rankScored(ctx, items, g, pass.batchSize, &report)
		default:
			err = r.rankDirect(ctx, items, g, &report)
		}
		if err != nil {
			return report, err
		}
	}
	r.logger.Info("ranking complete",
		"mode", r.config.Mode.String(), "items", len(items),
		"calls", report.Calls, "ranked", report.Ranked, "fellBack", report.FellBack)
	return report, nil
}

type group struct {
	category  Category
	positions []int // into the items slice, key-sorted
}

// groupByCategory splits item positions by category in configured order.
// Unclassified or unknown labels rank under the default category's rubric
// without being rewritten.
func (r *Ranker) groupByCategory(items []core.Item) []group {
	known := make(map[string]bool, len(r.config.Categories))
	for _, cat := range r.config.Categories {
		known[cat.Name] = true
	}
	byName := make(map[string][]int)
	for i := range items {
		name := items[i].Category
		if !known[name] {
			name = r.config.DefaultCategory
		}
		byName[name] = append(byName[name], i)
	}
	groups := make([]group, 0, len(r.config.Categories))
	for _, cat := range r.config.Categories {
		positions := byName[cat.Name]
		if len(positions) == 0 {
			continue
		}
		slices.SortFunc(positions, func(a, b int) int {
			if c := strings.Compare(items[a].Key, items[b].Key); c != 0 {
				return c
			}
			return strings.Compare(items[a].Title, items[b].Title)
		})
		groups = append(groups, group{category: cat, positions: positions})
	}
	return groups
}

// rankDirect asks for one full importance permutation of the category and
// converts rank position to score linearly, rank 0 at 100 and the last rank
// at the floor. A group of one scores 100 without a call.
func (r *Ranker) rankDirect(ctx context.Context, items []core.Item, g group, report *Report) error {
	n := len(g.positions)
	if n == 1 {
		items[g.positions[0]].Score = 100
		report.Ranked++
		return ctx.Err()
	}

	order, err := r.requestPermutation(ctx, items, g, report)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Warn("permutation failed, falling back to recency",
			"category", g.category.Name, "items", n, "error", err)
		r.assignByRecency(items, g.positions)
		report.FellBack += n
		return nil
	}
	for pos, idx := range order {
		items[g.positions[idx]].Score = linearScore(pos, n, r.config.ScoreFloor)
	}
	report.Ranked += n
	return nil
}

// requestPermutation runs the one gated ranking call of a category and
// returns a complete permutation of its local indices.
func (r *Ranker) requestPermutation(ctx context.Context, items []core.Item, g group, report *Report) ([]int, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	report.Calls++

	prompt := buildRankPrompt(g.category, articleLines(items, g.positions), len(g.positions))
	out, err := invokeWithRetry(ctx, r.gen, prompt, r.config,
		ai.WithTemperature(0), ai.WithMaxTokens(4096), ai.WithStructuredOutput())
	if err != nil {
		return nil, err
	}
	ranked, err := decodeIndexList(out)
	if err != nil {
		return nil, err
	}
	order, matched := completePermutation(ranked, len(g.positions))
	if matched == 0 {
		return nil, ErrEmptyRanking
	}
	return order, nil
}

// completePermutation repairs a model-returned ranking: out-of-range indices
// are dropped, repeats keep their first appearance, and omitted indices are
// appended in ascending order so every item keeps a place. matched counts
// how many positions actually came from the model.
func completePermutation(ranked []int, n int) (order []int, matched int) {
	seen := make([]bool, n)
	order = make([]int, 0, n)
	for _, idx := range ranked {
		if idx < 0 || idx >= n || seen[idx] {
			continue
		}
		seen[idx] = true
		order = append(order, idx)
	}
	matched = len(order)
	for idx := 0; idx < n; idx++ {
		if !seen[idx] {
			order = append(order, idx)
		}
	}
	return order, matched
}

// linearScore converts a rank position to a score: rank 0 is 100 and the
// last rank is the floor, linear in between.
func linearScore(pos, n int, floor float64) float64 {
	if n <= 1 {
		return 100
	}
	step := (100 - floor) / float64(n-1)
	return 100 - float64(pos)*step
}

// assignByRecency orders a group newest first and applies the same linear
// scores a permutation would get.
func (r *Ranker) assignByRecency(items []core.Item, positions []int) {
	order := slices.Clone(positions)
	slices.SortStableFunc(order, func(a, b int) int {
		if items[a].Published.After(items[b].Published) {
			return -1
		}
		if items[b].Published.After(items[a].Published) {
			return 1
		}
		return strings.Compare(items[a].Key, items[b].Key)
	})
	for pos, p := range order {
		items[p].Score = linearScore(pos, len(order), r.config.ScoreFloor)
	}
}

// rankScored asks for rubric sub-scores per batch and combines them with
// the category weights. Items already carrying sub-scores from an earlier
// pass keep them, so coverage retries only pay for what is still missing.
func (r *Ranker) rankScored(ctx context.Context, items []core.Item, g group, batchSize int, report *Report) error {
	pending := make([]int, 0, len(g.positions))
	for _, p := range g.positions {
		if items[p].Subs != nil {
			report.Ranked++
			continue
		}
		pending = append(pending, p)
	}
	if len(pending) == 0 {
		return ctx.Err()
	}

	cat := g.category
	fn := func(ctx context.Context, indices []int) ([]int, error) {
		positions := make([]int, len(indices))
		for j, i := range indices {
			positions[j] = pending[i]
		}
		prompt := buildScorePrompt(cat, articleLines(items, positions), len(indices))
		out, err := invokeWithRetry(ctx, r.gen, prompt, r.config,
			ai.WithTemperature(0), ai.WithMaxTokens(4096), ai.WithStructuredOutput())
		if err != nil {
			return nil, err
		}
		rows, err := decodeRows(out)
		if err != nil {
			return nil, err
		}

		var satisfied []int
		apply := func(local int, row map[string]json.RawMessage) {
			var subs core.SubScores
			for d, key := range cat.Keys {
				subs[d] = rowScore(row, key)
			}
			it := &items[positions[local]]
			it.Subs = &subs
			it.Score = weightedTotal(subs, cat.Weights)
			satisfied = append(satisfied, indices[local])
		}
		matched := 0
		for _, row := range rows {
			local, ok := rowPosition(row)
			if !ok || local < 0 || local >= len(indices) {
				continue
			}
			matched++
			apply(local, row)
		}
		// Position-less responses that still cover the batch map by order.
		if matched == 0 && len(rows) == len(indices) {
			for j, row := range rows {
				apply(j, row)
			}
		}
		return satisfied, nil
	}

	fallback := func(i int) {
		it := &items[pending[i]]
		subs := core.SubScores{2, 2, 2}
		it.Subs = &subs
		it.Score = weightedTotal(subs, cat.Weights)
	}

	run, err := r.invoker.Run(ctx, len(pending), batchSize, fn, fallback)
	report.Calls += run.Calls
	report.Ranked += run.Satisfied
	report.FellBack += run.FellBack
	return err
}

// weightedTotal combines sub-scores into the 0-100 category total.
func weightedTotal(subs core.SubScores, weights [3]int) float64 {
	total := 0
	for d := range subs {
		total += subs[d] * weights[d]
	}
	return float64(total)
}
