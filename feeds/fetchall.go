package feeds

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/curator/core"
)

const defaultFetchPool = 6

// FetchAll collects every source concurrently on a bounded pool. A failed
// source contributes an empty list and a log line, never an error; partial
// collection is normal operation. Every descriptor key is present in the
// result.
func FetchAll(ctx context.Context, fetcher Fetcher, sources []Descriptor, opts ...Option) (map[string][]core.Item, error) {
	o := applyOptions(options{poolSize: defaultFetchPool}, opts...)
	logger := o.logger.With("component", "feeds")

	result := make(map[string][]core.Item, len(sources))
	if len(sources) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(o.poolSize)
	if err != nil {
		return nil, fmt.Errorf("create fetch pool: %w", err)
	}
	defer pool.Release()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, desc := range sources {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			items, err := fetcher.Fetch(ctx, desc)
			if err != nil {
				logger.Warn("source fetch failed", "source", desc.Key, "err", err)
				items = nil
			}
			mu.Lock()
			result[desc.Key] = items
			mu.Unlock()
			logger.Info("source collected", "source", desc.Key, "items", len(items))
		}
		if err := pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	total := 0
	for _, items := range result {
		total += len(items)
	}
	logger.Info("collection complete", "sources", len(sources), "items", total)
	return result, ctx.Err()
}

// FilterImageless removes items with no image from every source bucket,
// in place, and reports how many were dropped.
func FilterImageless(sources map[string][]core.Item) int {
	removed := 0
	for key, items := range sources {
		kept := items[:0]
		for _, it := range items {
			if it.Image == "" {
				removed++
				continue
			}
			kept = append(kept, it)
		}
		sources[key] = kept
	}
	return removed
}
