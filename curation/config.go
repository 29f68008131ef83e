package curation

import (
	"errors"
	"time"

	"github.com/poiesic/curator/dedup"
	"github.com/poiesic/curator/feeds"
	"github.com/poiesic/curator/rank"
)

// Config holds the knobs of the assembled pipeline. The zero value is not
// usable on its own; NewEngine fills every zero field from DefaultConfig.
type Config struct {
	// Sources is the collection catalog. Defaults to the compiled-in
	// feeds.DefaultSources.
	Sources []feeds.Descriptor

	// Rank configures classification, ranking and selection.
	Rank rank.Config

	// Dedup configures the duplicate-matching thresholds.
	Dedup dedup.Config

	// NativeBatch and TranslateBatch are the annotation batch sizes.
	// Native-language items only need polishing, but translated items cost
	// the service more per article, so their batches stay smaller than the
	// extraction-style calls elsewhere.
	NativeBatch    int
	TranslateBatch int

	// TranslateTo names the display language annotation rewrites into,
	// as it should appear inside a prompt.
	TranslateTo string

	// AnnotateMaxTokens bounds one annotation response. Batches carry
	// multi-field output per article, so the ceiling is generous.
	AnnotateMaxTokens int

	// AnnotatePool and FilterPool size the worker pools of the annotation
	// and relevance-filter stages.
	AnnotatePool int
	FilterPool   int

	// CoverageThreshold is the ranked fraction under which the ranking
	// stage re-enters, and MaxRankRetries bounds how often. The stage runs
	// at most MaxRankRetries+1 times.
	CoverageThreshold float64
	MaxRankRetries    int

	// LimiterCalls per LimiterWindow caps the generation-service call rate
	// across every stage.
	LimiterCalls  int
	LimiterWindow time.Duration

	// Location fixes the digest's day boundary: the digest date, the
	// recency flag and the day buckets of display sorting all follow it.
	Location *time.Location

	// SectionSimilarity is the title-similarity gate for the cross-source
	// dedupe of per-source sections. Section sources syndicate the same
	// wire stories, so the gate sits above the main title threshold.
	SectionSimilarity float64

	// SectionLimit caps each per-source section.
	SectionLimit int

	// RelatedLimit caps the related-item references kept per stored item.
	RelatedLimit int
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Sources:           feeds.DefaultSources(),
		Rank:              rank.DefaultConfig(),
		Dedup:             dedup.DefaultConfig(),
		NativeBatch:       2,
		TranslateBatch:    5,
		TranslateTo:       "Korean",
		AnnotateMaxTokens: 12288,
		AnnotatePool:      5,
		FilterPool:        4,
		CoverageThreshold: 0.9,
		MaxRankRetries:    2,
		LimiterCalls:      3,
		LimiterWindow:     5 * time.Second,
		Location:          time.FixedZone("KST", 9*60*60),
		SectionSimilarity: 0.75,
		SectionLimit:      10,
		RelatedLimit:      3,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig. The embedded
// rank and dedup configs keep their own defaulting inside their packages;
// only the rank fields the engine reads directly are filled here.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if len(c.Sources) == 0 {
		c.Sources = def.Sources
	}
	if len(c.Rank.Categories) == 0 {
		c.Rank.Categories = def.Rank.Categories
	}
	if c.Rank.DefaultCategory == "" {
		c.Rank.DefaultCategory = def.Rank.DefaultCategory
	}
	if c.Rank.NativeLanguage == "" {
		c.Rank.NativeLanguage = def.Rank.NativeLanguage
	}
	if c.Rank.ScoreBatchSize == 0 {
		c.Rank.ScoreBatchSize = def.Rank.ScoreBatchSize
	}
	if c.Rank.MaxAttempts == 0 {
		c.Rank.MaxAttempts = def.Rank.MaxAttempts
	}
	if c.Rank.RetryBaseDelay == 0 {
		c.Rank.RetryBaseDelay = def.Rank.RetryBaseDelay
	}
	if c.NativeBatch == 0 {
		c.NativeBatch = def.NativeBatch
	}
	if c.TranslateBatch == 0 {
		c.TranslateBatch = def.TranslateBatch
	}
	if c.TranslateTo == "" {
		c.TranslateTo = def.TranslateTo
	}
	if c.AnnotateMaxTokens == 0 {
		c.AnnotateMaxTokens = def.AnnotateMaxTokens
	}
	if c.AnnotatePool == 0 {
		c.AnnotatePool = def.AnnotatePool
	}
	if c.FilterPool == 0 {
		c.FilterPool = def.FilterPool
	}
	if c.CoverageThreshold == 0 {
		c.CoverageThreshold = def.CoverageThreshold
	}
	if c.MaxRankRetries == 0 {
		c.MaxRankRetries = def.MaxRankRetries
	}
	if c.LimiterCalls == 0 {
		c.LimiterCalls = def.LimiterCalls
	}
	if c.LimiterWindow == 0 {
		c.LimiterWindow = def.LimiterWindow
	}
	if c.Location == nil {
		c.Location = def.Location
	}
	if c.SectionSimilarity == 0 {
		c.SectionSimilarity = def.SectionSimilarity
	}
	if c.SectionLimit == 0 {
		c.SectionLimit = def.SectionLimit
	}
	if c.RelatedLimit == 0 {
		c.RelatedLimit = def.RelatedLimit
	}
	return c
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}
	if _, err := feeds.LoadDescriptors(c.Sources); err != nil {
		return err
	}
	if err := c.Rank.Validate(); err != nil {
		return err
	}
	if c.CoverageThreshold <= 0 || c.CoverageThreshold > 1 {
		return errors.New("coverage threshold must be within (0, 1]")
	}
	if c.SectionSimilarity <= 0 || c.SectionSimilarity > 1 {
		return errors.New("section similarity must be within (0, 1]")
	}
	return nil
}
