package rank

import (
	"errors"
	"fmt"
	"time"
)

// Mode selects the ranking strategy.
type Mode int

const (
	// ModeDirect asks for a full importance permutation of each category in
	// one call and converts rank position to score linearly. Ranks within a
	// category are always comparable because they come from the same call.
	ModeDirect Mode = iota

	// ModeScored asks for rubric sub-scores per small batch and combines
	// them with fixed category weights.
	ModeScored
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeScored:
		return "scored"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Category defines one ranking bucket: how items are classified into it and
// how they are judged inside it.
type Category struct {
	// Name is the stable label stored on items and used as the digest
	// section key.
	Name string

	// Guide is the classification guidance for this category. Categories
	// are checked in declaration order, first match wins, so the guide
	// should state positive signals and the common traps.
	Guide string

	// Keys are the JSON field names of the three rubric dimensions, in
	// rubric order.
	Keys [3]string

	// Weights combine the three sub-scores into the total. They should sum
	// to 10 so a perfect 10/10/10 lands exactly on 100.
	Weights [3]int

	// Rubric is the judgment criteria block shared by both ranking modes.
	Rubric string

	// Calibration holds absolute anchor examples for scored mode.
	Calibration string

	// Example shows scored mode's expected output shape.
	Example string
}

// Config holds the knobs of classification, ranking and selection.
type Config struct {
	// Mode selects direct permutation ranking (default) or rubric scoring.
	Mode Mode

	// Categories are checked in order during classification; the same order
	// fixes the category order of the digest.
	Categories []Category

	// DefaultCategory receives items the service never classified or
	// labeled with an unknown name. Must name one of Categories.
	DefaultCategory string

	// ClassifyBatchSize and ScoreBatchSize are items per service call.
	// Single-item batches trade calls for per-item reliability.
	ClassifyBatchSize int
	ScoreBatchSize    int

	// ScoreFloor is the score of the last rank in direct mode. Rank 0 is
	// always 100.
	ScoreFloor float64

	// Limit caps each category's selected set.
	Limit int

	// MinRecent is the number of recent items each selected category is
	// guaranteed, backfilled by score when fewer exist.
	MinRecent int

	// MinCategory is the size under which a selected category borrows
	// suppressed duplicates to fill out.
	MinCategory int

	// NativeLanguage marks items whose title needs no rewriting, so an
	// unchanged display title does not disqualify them from highlights.
	NativeLanguage string

	// MaxAttempts and RetryBaseDelay control the backoff retry around each
	// generation call.
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// DefaultConfig returns the production configuration: three categories,
// direct ranking, 25-item sections with three recent items guaranteed.
func DefaultConfig() Config {
	return Config{
		Mode:              ModeDirect,
		Categories:        DefaultCategories(),
		DefaultCategory:   "industry_business",
		ClassifyBatchSize: 1,
		ScoreBatchSize:    1,
		ScoreFloor:        40,
		Limit:             25,
		MinRecent:         3,
		MinCategory:       5,
		NativeLanguage:    "ko",
		MaxAttempts:       3,
		RetryBaseDelay:    time.Second,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if len(c.Categories) == 0 {
		c.Categories = def.Categories
	}
	if c.DefaultCategory == "" {
		c.DefaultCategory = def.DefaultCategory
	}
	if c.ClassifyBatchSize == 0 {
		c.ClassifyBatchSize = def.ClassifyBatchSize
	}
	if c.ScoreBatchSize == 0 {
		c.ScoreBatchSize = def.ScoreBatchSize
	}
	if c.ScoreFloor == 0 {
		c.ScoreFloor = def.ScoreFloor
	}
	if c.Limit == 0 {
		c.Limit = def.Limit
	}
	if c.MinRecent == 0 {
		c.MinRecent = def.MinRecent
	}
	if c.MinCategory == 0 {
		c.MinCategory = def.MinCategory
	}
	if c.NativeLanguage == "" {
		c.NativeLanguage = def.NativeLanguage
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.RetryBaseDelay == 0 {
		c.RetryBaseDelay = def.RetryBaseDelay
	}
	return c
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if len(c.Categories) == 0 {
		return errors.New("rank config: at least one category is required")
	}
	names := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.Name == "" {
			return errors.New("rank config: category name is required")
		}
		if names[cat.Name] {
			return fmt.Errorf("rank config: duplicate category %q", cat.Name)
		}
		names[cat.Name] = true
	}
	if !names[c.DefaultCategory] {
		return fmt.Errorf("rank config: default category %q is not configured", c.DefaultCategory)
	}
	if c.ScoreFloor < 0 || c.ScoreFloor > 100 {
		return errors.New("rank config: score floor must be within 0-100")
	}
	if c.MinRecent > c.Limit {
		return errors.New("rank config: recent minimum cannot exceed the category limit")
	}
	return nil
}
