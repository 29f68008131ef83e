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


package dedup

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/core"
)

// Engine marks duplicate items across a collection.
type Engine struct {
	config   Config
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithEmbedder enables the embedding similarity layer. Without an embedder
// the engine runs the six cheap layers only.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(e *Engine) {
		e.embedder = embedder
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// NewEngine creates an engine. Zero-valued config fields fall back to
// DefaultConfig.
func NewEngine(config Config, opts ...Option) *Engine {
	e := &Engine{
		config: config.withDefaults(),
		logger: slog.Default().With("component", "dedup"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run marks every item that duplicates an earlier-published item. All items
// are returned, ordered by publish time ascending; suppressed items carry
// Duplicate=true and Origin set to the key of their representative.
//
// The marking is deterministic, so running the engine on its own output
// reproduces the same marks.
func (e *Engine) Run(ctx context.Context, items []core.Item) []core.Item {
	out := make([]core.Item, len(items))
	copy(out, items)
	if len(out) <= 1 {
		return out
	}

	// Earliest published first, so the representative of every group is the
	// origin item. Key breaks ties to keep reruns stable.
	slices.SortStableFunc(out, func(a, b core.Item) int {
		if a.Published.Before(b.Published) {
			return -1
		}
		if b.Published.Before(a.Published) {
			return 1
		}
		return strings.Compare(a.Key, b.Key)
	})

	sigs := make([]signature, len(out))
	for i := range out {
		sigs[i] = newSignature(&out[i])
	}
	vectors := e.embedVectors(ctx, out)
	for i := range vectors {
		sigs[i].vector = vectors[i]
	}

	seenURL := make(map[string]int, len(out))
	var kept []int
	duplicates := 0
	for i := range out {
		origin, layer := e.findOrigin(&sigs[i], sigs, kept, seenURL)
		if layer == 0 {
			out[i].Duplicate = false
			out[i].Origin = ""
			kept = append(kept, i)
			if sigs[i].key != "" {
				seenURL[sigs[i].key] = i
			}
			continue
		}
		out[i].Duplicate = true
		out[i].Origin = out[origin].Key
		duplicates++
		e.logger.Debug("duplicate suppressed",
			"key", out[i].Key, "origin", out[origin].Key, "layer", layer)
	}

	if duplicates > 0 {
		e.logger.Info("deduplication complete",
			"total", len(out), "unique", len(kept), "duplicates", duplicates)
	}
	return out
}

// findOrigin returns the index of the representative the candidate matches,
// with the layer number that matched, or layer 0 when the candidate is
// unique. Layer 1 is the URL-key map; layers 2-7 compare against each kept
// representative in turn and stop at the first hit.
func (e *Engine) findOrigin(candidate *signature, sigs []signature, kept []int, seenURL map[string]int) (int, int) {
	if candidate.key != "" {
		if origin, ok := seenURL[candidate.key]; ok {
			return origin, 1
		}
	}
	for _, k := range kept {
		if layer := e.sameEvent(candidate, &sigs[k]); layer != 0 {
			return k, layer
		}
	}
	return 0, 0
}

// sameEvent runs layers 2-7 for one candidate/representative pair.
func (e *Engine) sameEvent(a, b *signature) int {
	if ratio(a.title, b.title) >= e.config.TitleThreshold {
		return 2
	}
	if ratio(a.display, b.display) >= e.config.DisplayThreshold {
		return 3
	}
	if e.entitiesMatch(a, b) {
		return 4
	}
	if ratio(a.summary, b.summary) >= e.config.SummaryThreshold {
		return 5
	}
	if e.tokensMatch(a, b) {
		return 6
	}
	if len(a.vector) > 0 && len(b.vector) > 0 &&
		Cosine(a.vector, b.vector) >= float32(e.config.EmbeddingThreshold) {
		return 7
	}
	return 0
}

func (e *Engine) entitiesMatch(a, b *signature) bool {
	if a.cluster == "" || a.cluster != b.cluster {
		return false
	}
	return overlap(a.entities, b.entities) >= e.config.MinSharedEntities
}

func (e *Engine) tokensMatch(a, b *signature) bool {
	return overlap(a.proper, b.proper) >= e.config.MinProperTokens &&
		overlap(a.numeric, b.numeric) >= e.config.MinNumericTokens
}

func overlap(a, b map[string]bool) int {
	shared := 0
	for k := range a {
		if b[k] {
			shared++
		}
	}
	return shared
}

// embedVectors computes one normalized vector per item. Any failure disables
// the embedding layer for this run; the pipeline continues on the cheap
// layers.
func (e *Engine) embedVectors(ctx context.Context, items []core.Item) [][]float32 {
	if e.embedder == nil {
		return nil
	}

	texts := make([]string, len(items))
	for i := range items {
		texts[i] = embedText(&items[i])
	}

	var vectors [][]float32
	err := ai.RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = e.embedder.EmbedTexts(ctx, texts)
		return err
	}, e.config.EmbedMaxAttempts, e.config.EmbedRetryDelay)
	if err != nil {
		e.logger.Warn("embedding failed, vector layer disabled for this run", "err", err)
		return nil
	}
	if len(vectors) != len(items) {
		e.logger.Warn("embedding count mismatch, vector layer disabled for this run",
			"expected", len(items), "got", len(vectors))
		return nil
	}

	for i := range vectors {
		vectors[i] = NormalizeVector(vectors[i])
	}
	return vectors
}

func embedText(item *core.Item) string {
	summary := item.Description
	if item.Annotation != nil && item.Annotation.Summary != "" {
		summary = item.Annotation.Summary
	}
	if summary == "" {
		return item.Title
	}
	return item.Title + " " + summary
}
