package dedup

import "time"

// Config holds the thresholds for the matching layers.
type Config struct {
	// TitleThreshold gates fuzzy similarity between normalized raw titles.
	TitleThreshold float64

	// DisplayThreshold gates fuzzy similarity between normalized display
	// titles. Display titles may be rewritten into another language, so the
	// gate is slightly stricter than the raw-title one.
	DisplayThreshold float64

	// SummaryThreshold gates fuzzy similarity between one-line summaries.
	SummaryThreshold float64

	// MinSharedEntities is how many annotation entities two items must share
	// before the cluster label is even consulted.
	MinSharedEntities int

	// MinProperTokens and MinNumericTokens are the minimum shared counts of
	// proper-noun-like and numeric title tokens for a key-token match.
	MinProperTokens  int
	MinNumericTokens int

	// EmbeddingThreshold gates cosine similarity between embedding vectors.
	EmbeddingThreshold float64

	// EmbedMaxAttempts and EmbedRetryDelay control the retry of the one
	// batch embedding call per run.
	EmbedMaxAttempts int
	EmbedRetryDelay  time.Duration
}

// DefaultConfig returns the thresholds used in production.
func DefaultConfig() Config {
	return Config{
		TitleThreshold:     0.55,
		DisplayThreshold:   0.60,
		SummaryThreshold:   0.72,
		MinSharedEntities:  2,
		MinProperTokens:    2,
		MinNumericTokens:   1,
		EmbeddingThreshold: 0.93,
		EmbedMaxAttempts:   3,
		EmbedRetryDelay:    time.Second,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.TitleThreshold == 0 {
		c.TitleThreshold = def.TitleThreshold
	}
	if c.DisplayThreshold == 0 {
		c.DisplayThreshold = def.DisplayThreshold
	}
	if c.SummaryThreshold == 0 {
		c.SummaryThreshold = def.SummaryThreshold
	}
	if c.MinSharedEntities == 0 {
		c.MinSharedEntities = def.MinSharedEntities
	}
	if c.MinProperTokens == 0 {
		c.MinProperTokens = def.MinProperTokens
	}
	if c.MinNumericTokens == 0 {
		c.MinNumericTokens = def.MinNumericTokens
	}
	if c.EmbeddingThreshold == 0 {
		c.EmbeddingThreshold = def.EmbeddingThreshold
	}
	if c.EmbedMaxAttempts == 0 {
		c.EmbedMaxAttempts = def.EmbedMaxAttempts
	}
	if c.EmbedRetryDelay == 0 {
		c.EmbedRetryDelay = def.EmbedRetryDelay
	}
	return c
}
