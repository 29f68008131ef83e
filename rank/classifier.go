package rank

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/batch"
	"github.com/poiesic/curator/core"
)

// Classifier assigns every item to one configured category through batched
// generation calls.
type Classifier struct {
	gen     ai.Generator
	invoker *batch.Invoker
	config  Config
	logger  *slog.Logger
}

// NewClassifier creates a classifier with its own worker pool on the shared
// rate limiter. Callers must Release it when done.
func NewClassifier(gen ai.Generator, limiter *batch.Limiter, config Config, opts ...Option) (*Classifier, error) {
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
	return &Classifier{
		gen:     gen,
		invoker: invoker,
		config:  config,
		logger:  o.logger.With("component", "classify"),
	}, nil
}

// Release releases the worker pool. The classifier must not be used after.
func (c *Classifier) Release() {
	c.invoker.Release()
}

// Classify labels every item in place with one of the configured category
// names. Items the service fails to label, or labels with an unknown name,
// fall back to the default category, so every item leaves classified.
func (c *Classifier) Classify(ctx context.Context, items []core.Item) (batch.Report, error) {
	if len(items) == 0 {
		return batch.Report{}, nil
	}

	// Identical collections must produce identical prompts run to run, so
	// batches are composed over a key-sorted view of the items.
	order := sortedPositions(items)

	known := make(map[string]bool, len(c.config.Categories))
	for _, cat := range c.config.Categories {
		known[cat.Name] = true
	}

	fn := func(ctx context.Context, indices []int) ([]int, error) {
		positions := make([]int, len(indices))
		for j, i := range indices {
			positions[j] = order[i]
		}
		prompt := buildClassifyPrompt(c.config.Categories, c.config.DefaultCategory,
			articleLines(items, positions), len(indices))
		out, err := invokeWithRetry(ctx, c.gen, prompt, c.config,
			ai.WithTemperature(0), ai.WithStructuredOutput())
		if err != nil {
			return nil, err
		}
		rows, err := decodeRows(out)
		if err != nil {
			return nil, err
		}

		var satisfied []int
		apply := func(local int, cat string) {
			items[positions[local]].Category = cat
			satisfied = append(satisfied, indices[local])
		}
		matched := 0
		for _, row := range rows {
			local, ok := rowPosition(row)
			if !ok || local < 0 || local >= len(indices) {
				continue
			}
			matched++
			if cat := rowString(row, "cat"); known[cat] {
				apply(local, cat)
			}
		}
		// Position-less responses that still cover the batch map by order.
		if matched == 0 && len(rows) == len(indices) {
			for j, row := range rows {
				if cat := rowString(row, "cat"); known[cat] {
					apply(j, cat)
				}
			}
		}
		return satisfied, nil
	}

	fallback := func(i int) {
		items[order[i]].Category = c.config.DefaultCategory
	}

	report, err := c.invoker.Run(ctx, len(order), c.config.ClassifyBatchSize, fn, fallback)
	c.logger.Info("classification complete",
		"items", len(items), "calls", report.Calls,
		"classified", report.Satisfied, "defaulted", report.FellBack)
	return report, err
}

// sortedPositions returns item positions ordered by (key, title) so batch
// composition is reproducible.
func sortedPositions(items []core.Item) []int {
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int {
		if c := strings.Compare(items[a].Key, items[b].Key); c != 0 {
			return c
		}
		return strings.Compare(items[a].Title, items[b].Title)
	})
	return order
}

// invokeWithRetry wraps one generation call in the standard backoff retry.
func invokeWithRetry(ctx context.Context, gen ai.Generator, prompt string, config Config, opts ...ai.InvokeOption) (string, error) {
	var out string
	err := ai.RetryWithBackoff(ctx, func() error {
		text, err := gen.Invoke(ctx, prompt, opts...)
		if err != nil {
			return err
		}
		out = text
		return nil
	}, config.MaxAttempts, config.RetryBaseDelay)
	return out, err
}
