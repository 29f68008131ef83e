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

package curator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/ai/openai"
	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/curation"
	"github.com/poiesic/curator/storage"
	"github.com/poiesic/curator/storage/badger"
)

// Curator bundles the stored corpus and the configured services: one badger
// backend with the digest and item repositories on it, plus the generation
// and embedding provider the pipeline runs against.
type Curator struct {
	backend  *badger.Backend
	digests  storage.DigestRepository
	items    storage.ItemRepository
	provider ai.Provider
	config   curation.Config
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Curator.
type Option func(*options)

type options struct {
	aiConfig *ai.Config
	provider ai.Provider
	config   curation.Config
	logger   *slog.Logger
}

// WithAIConfig sets the service endpoints and models of the default
// OpenAI-compatible provider.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *options) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithProvider supplies a ready-made service provider instead of the
// configured OpenAI-compatible one. The curator takes ownership and closes
// it on Close.
func WithProvider(p ai.Provider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithConfig sets the pipeline configuration. Zero fields keep their
// defaults.
func WithConfig(cfg curation.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New opens the store at filePath and builds the configured provider.
// Callers must Close the returned Curator.
func New(filePath string, opts ...Option) (*Curator, error) {
	o := &options{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}

	// The two fields read outside the engine need their defaults here; the
	// engine fills the rest on construction.
	def := curation.DefaultConfig()
	if o.config.RelatedLimit == 0 {
		o.config.RelatedLimit = def.RelatedLimit
	}
	if o.config.Location == nil {
		o.config.Location = def.Location
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	provider := o.provider
	if provider == nil {
		provider, err = openai.NewProvider(o.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	return &Curator{
		backend:  backend,
		digests:  badger.NewDigestRepository(backend),
		items:    badger.NewItemRepository(backend),
		provider: provider,
		config:   o.config,
		logger:   o.logger,
		now:      time.Now,
	}, nil
}

// Close releases the provider and the storage backend.
func (c *Curator) Close() error {
	if err := c.provider.Close(); err != nil {
		c.logger.Error("error closing service provider", "err", err)
	}
	if err := c.items.Close(); err != nil {
		c.logger.Error("error closing item repository", "err", err)
		return err
	}
	if err := c.digests.Close(); err != nil {
		c.logger.Error("error closing digest repository", "err", err)
		return err
	}
	if err := c.backend.Close(); err != nil {
		c.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (c *Curator) DigestRepository() storage.DigestRepository {
	return c.digests
}

func (c *Curator) ItemRepository() storage.ItemRepository {
	return c.items
}

// NewEngine builds a pipeline engine on the curator's provider and
// configuration. Callers must Release it when done.
func (c *Curator) NewEngine(opts ...curation.Option) (*curation.Engine, error) {
	all := append([]curation.Option{curation.WithLogger(c.logger)}, opts...)
	return curation.NewEngine(c.provider, c.config, all...)
}

// Run executes one full pipeline pass and returns the outcome without
// touching the store. What to do with it is the caller's decision.
func (c *Curator) Run(ctx context.Context, opts ...curation.Option) (*curation.Result, error) {
	eng, err := c.NewEngine(opts...)
	if err != nil {
		return nil, err
	}
	defer eng.Release()
	return eng.Run(ctx)
}

// Curate runs the pipeline once and persists the outcome: every collected
// item goes into the corpus with refreshed related-item references, and the
// digest document is saved under its date, merging with an earlier run of
// the same day. The stored (possibly merged) digest is returned.
func (c *Curator) Curate(ctx context.Context, opts ...curation.Option) (*core.Digest, error) {
	result, err := c.Run(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return c.persist(ctx, result)
}

// persist writes one run's outcome into the store.
func (c *Curator) persist(ctx context.Context, result *curation.Result) (*core.Digest, error) {
	stored, err := c.items.AllItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stored corpus: %w", err)
	}

	// A story syndicated under one URL appears once per source; the stored
	// record follows the duplicate group's representative.
	fresh := make([]*core.Item, 0, len(result.Items))
	seen := make(map[string]int, len(result.Items))
	for i := range result.Items {
		it := result.Items[i]
		if j, ok := seen[it.Key]; ok {
			if fresh[j].Duplicate && !it.Duplicate {
				*fresh[j] = it
			}
			continue
		}
		seen[it.Key] = len(fresh)
		fresh = append(fresh, &it)
	}

	corpus := make([]*core.Item, 0, len(stored)+len(fresh))
	for _, it := range stored {
		if _, ok := seen[it.Key]; !ok {
			corpus = append(corpus, it)
		}
	}
	corpus = append(corpus, fresh...)
	curation.RelateItems(fresh, corpus, c.config.RelatedLimit)

	if err := c.items.PutItems(ctx, fresh...); err != nil {
		return nil, fmt.Errorf("store items: %w", err)
	}
	saved, err := c.digests.SaveDigest(ctx, result.Digest)
	if err != nil {
		return nil, fmt.Errorf("store digest: %w", err)
	}

	c.logger.Info("curation run stored",
		"date", saved.Date, "items", len(fresh), "corpus", len(corpus))
	return saved, nil
}

// Cleanup removes digests and items older than the retention window. The
// day boundary follows the digest clock. Returns how many of each were
// removed.
func (c *Curator) Cleanup(ctx context.Context, retainDays int) (int, int, error) {
	if retainDays <= 0 {
		return 0, 0, fmt.Errorf("retention days must be positive, got %d", retainDays)
	}
	cutoff := c.now().In(c.config.Location).AddDate(0, 0, -retainDays)

	digests, err := c.digests.DeleteBefore(ctx, cutoff.Format("2006-01-02"))
	if err != nil {
		return 0, 0, fmt.Errorf("delete old digests: %w", err)
	}
	items, err := c.items.DeleteFetchedBefore(ctx, cutoff)
	if err != nil {
		return digests, 0, fmt.Errorf("delete old items: %w", err)
	}

	c.logger.Info("cleanup complete",
		"cutoff", cutoff.Format("2006-01-02"), "digests", digests, "items", items)
	return digests, items, nil
}
