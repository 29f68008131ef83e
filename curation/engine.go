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
	"log/slog"
	"time"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/batch"
	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/dedup"
	"github.com/poiesic/curator/feeds"
	"github.com/poiesic/curator/rank"
	"github.com/poiesic/curator/workflow"
)

// Engine runs the curation pipeline end to end.
// It owns the stage graph and the shared rate limit across every call to the
// generation service.
type Engine struct {
	config        Config
	descriptors   map[string]feeds.Descriptor
	highlightable map[string]bool

	fetcher feeds.Fetcher
	scraper *feeds.Scraper
	matcher *feeds.Relevance

	gen       ai.Generator
	filters   *batch.Invoker
	annotator *batch.Invoker

	classifier     *rank.Classifier
	ranker         *rank.Ranker
	deduper        *dedup.Engine
	sectionDeduper *dedup.Engine

	graph  *workflow.Graph
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine) error

// WithFetcher replaces the default RSS fetcher, for tests or alternate
// transports. An engine with a custom fetcher skips the enrichment scrape,
// the fetcher owns the full item shape. A nil fetcher keeps the default.
func WithFetcher(f feeds.Fetcher) Option {
	return func(e *Engine) error {
		if f == nil {
			return nil
		}
		e.fetcher = f
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a curation engine on the given provider.
// Zero-valued config fields fall back to production defaults before
// validation, so Config{} is a usable starting point.
func NewEngine(provider ai.Provider, config Config, opts ...Option) (*Engine, error) {
	if provider == nil {
		return nil, ErrProviderRequired
	}

	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// The engine works on the defaulted catalog so role and highlight
	// lookups during the run see final values.
	sources, err := feeds.LoadDescriptors(config.Sources)
	if err != nil {
		return nil, err
	}
	config.Sources = sources

	e := &Engine{
		config:  config,
		gen:     provider.Generator(),
		matcher: feeds.DefaultRelevance(),
		logger:  slog.Default(),
		now:     time.Now,
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	if e.fetcher == nil {
		e.fetcher = feeds.NewRSS(feeds.WithLogger(e.logger), feeds.WithRelevance(e.matcher))
		e.scraper = feeds.NewScraper(feeds.WithLogger(e.logger))
	}

	limiter, err := batch.NewLimiter(config.LimiterCalls, config.LimiterWindow)
	if err != nil {
		return nil, err
	}

	e.filters, err = batch.NewInvoker(config.FilterPool, limiter)
	if err != nil {
		return nil, err
	}

	e.annotator, err = batch.NewInvoker(config.AnnotatePool, limiter)
	if err != nil {
		e.Release()
		return nil, err
	}

	e.classifier, err = rank.NewClassifier(e.gen, limiter, config.Rank, rank.WithLogger(e.logger))
	if err != nil {
		e.Release()
		return nil, err
	}

	e.ranker, err = rank.NewRanker(e.gen, limiter, config.Rank, rank.WithLogger(e.logger))
	if err != nil {
		e.Release()
		return nil, err
	}

	e.deduper = dedup.NewEngine(config.Dedup,
		dedup.WithEmbedder(provider.Embedder()), dedup.WithLogger(e.logger))

	// Section assembly reuses the duplicate engine on title similarity
	// alone. No embedder: section lists are small and per-source.
	e.sectionDeduper = dedup.NewEngine(dedup.Config{
		TitleThreshold:   config.SectionSimilarity,
		DisplayThreshold: config.SectionSimilarity,
	}, dedup.WithLogger(e.logger))

	e.descriptors = make(map[string]feeds.Descriptor, len(sources))
	e.highlightable = make(map[string]bool, len(sources))
	for _, desc := range sources {
		e.descriptors[desc.Key] = desc
		if desc.Highlight {
			e.highlightable[desc.Key] = true
		}
	}

	graph, err := e.buildGraph()
	if err != nil {
		e.Release()
		return nil, err
	}
	e.graph = graph

	return e, nil
}

// Result carries the assembled digest plus every item the run collected,
// including suppressed duplicates and per-source section items. Callers
// persisting run output should store Items, not just the digest, so that
// duplicate suppression stays explainable afterwards.
type Result struct {
	Digest *core.Digest
	Items  []core.Item
}

// Run executes one full curation pass.
// Stage failures are recorded on the digest and degrade it; only a failure
// of the workflow itself comes back as an error.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	started := time.Now()

	final, err := e.graph.Run(ctx, nil)
	if err != nil {
		return nil, err
	}

	digest := channelValue[*core.Digest](final, digestChannel)
	if digest == nil {
		// Assembly never ran. Ship an empty dated digest so the run still
		// produces a document carrying the stage errors.
		now := e.now()
		digest = &core.Digest{
			Date:      now.In(e.config.Location).Format(dateLayout),
			UpdatedAt: now.UTC(),
		}
	}
	digest.Errors = channelValue[[]core.StageError](final, workflow.ErrorsChannel)
	digest.Timings = channelValue[map[string]float64](final, workflow.TimingsChannel)

	items := channelValue[[]core.Item](final, itemsChannel)
	sections := channelValue[[]core.Item](final, sectionsChannel)
	all := make([]core.Item, 0, len(items)+len(sections))
	all = append(all, items...)
	all = append(all, sections...)

	coverage := channelValue[float64](final, coverageChannel)
	digest.Warnings = e.warnings(digest, len(all), coverage)

	e.logger.Info("curation run complete",
		"date", digest.Date,
		"collected", len(all),
		"displayed", displayedCount(digest),
		"highlights", len(digest.Highlights),
		"errors", len(digest.Errors),
		"elapsed", time.Since(started).Round(time.Millisecond))

	return &Result{Digest: digest, Items: all}, nil
}

// invoke calls the generation service with the backoff retry shared by the
// filter and annotation stages.
func (e *Engine) invoke(ctx context.Context, prompt string, opts ...ai.InvokeOption) (string, error) {
	var out string
	err := ai.RetryWithBackoff(ctx, func() error {
		var invokeErr error
		out, invokeErr = e.gen.Invoke(ctx, prompt, opts...)
		return invokeErr
	}, e.config.Rank.MaxAttempts, e.config.Rank.RetryBaseDelay)
	return out, err
}

// displayedCount totals the items actually placed in the digest.
func displayedCount(d *core.Digest) int {
	n := 0
	for _, items := range d.Categories {
		n += len(items)
	}
	for _, items := range d.Sources {
		n += len(items)
	}
	return n
}

// Release releases the worker pools.
// The engine should not be used after calling Release.
func (e *Engine) Release() {
	if e.filters != nil {
		e.filters.Release()
	}
	if e.annotator != nil {
		e.annotator.Release()
	}
	if e.classifier != nil {
		e.classifier.Release()
	}
	if e.ranker != nil {
		e.ranker.Release()
	}
}
