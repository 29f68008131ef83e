package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Func performs one generation-service call covering the given payload
// indices and reports which of them it actually satisfied. Implementations
// write their decoded results into caller-owned state; distinct indices are
// distinct slots, so no locking is needed on that state.
type Func func(ctx context.Context, indices []int) ([]int, error)

// Report summarizes one Run.
type Report struct {
	Calls     int // service calls made, including splits and retries
	Satisfied int // indices satisfied by the service
	FellBack  int // indices filled by the deterministic fallback
}

// Invoker dispatches batched service calls onto a bounded worker pool, with
// every call gated through the shared rate limiter.
type Invoker struct {
	pool    *ants.Pool
	limiter *Limiter
	log     *slog.Logger

	mu    sync.Mutex
	calls int
}

// NewInvoker creates an invoker with its own worker pool. Callers must
// Release it when done.
func NewInvoker(poolSize int, limiter *Limiter) (*Invoker, error) {
	if poolSize <= 0 {
		return nil, ErrInvalidPoolSize
	}
	if limiter == nil {
		return nil, ErrLimiterRequired
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Invoker{
		pool:    pool,
		limiter: limiter,
		log:     slog.Default().With("component", "batch"),
	}, nil
}

// Release releases the worker pool. The invoker must not be used after.
func (inv *Invoker) Release() {
	inv.pool.Release()
}

// Run covers indices [0, total) in batches of size, in parallel on the pool.
//
// Each batch goes through split-retry: a failed or empty call is halved and
// retried recursively down to single items, and a partially satisfied batch
// retries its missing indices individually once. fallback (optional) then
// runs for every index still unsatisfied, so callers can count on a value
// for all of them.
func (inv *Invoker) Run(ctx context.Context, total, size int, fn Func, fallback func(i int)) (Report, error) {
	if size <= 0 {
		return Report{}, ErrInvalidBatchSize
	}
	inv.mu.Lock()
	inv.calls = 0
	inv.mu.Unlock()

	satisfied := make([]bool, total)

	var wg sync.WaitGroup
	for start := 0; start < total; start += size {
		end := min(start+size, total)
		indices := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			indices = append(indices, i)
		}

		wg.Add(1)
		err := inv.pool.Submit(func() {
			defer wg.Done()
			for i := range inv.processBatch(ctx, indices, fn) {
				satisfied[i] = true
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return Report{}, fmt.Errorf("submit batch: %w", err)
		}
	}
	wg.Wait()

	report := Report{Calls: inv.callCount()}
	for i := 0; i < total; i++ {
		if satisfied[i] {
			report.Satisfied++
			continue
		}
		if fallback != nil {
			fallback(i)
			report.FellBack++
		}
	}
	if report.FellBack > 0 {
		inv.log.Debug("fallback filled unsatisfied payloads",
			"fellBack", report.FellBack, "total", total)
	}
	return report, ctx.Err()
}

// processBatch runs one batch through split-retry plus the individual retry
// of missing indices.
func (inv *Invoker) processBatch(ctx context.Context, indices []int, fn Func) map[int]bool {
	satisfied := inv.splitRetry(ctx, indices, fn)

	// Partial success: retry missing indices one by one, once.
	if 0 < len(satisfied) && len(satisfied) < len(indices) {
		for _, i := range indices {
			if satisfied[i] || ctx.Err() != nil {
				continue
			}
			got, err := inv.call(ctx, []int{i}, fn)
			if err != nil {
				continue
			}
			for k := range got {
				satisfied[k] = true
			}
		}
	}
	return satisfied
}

// splitRetry calls fn on the whole index set and recursively halves it on
// failure, down to single items.
func (inv *Invoker) splitRetry(ctx context.Context, indices []int, fn Func) map[int]bool {
	if len(indices) == 0 || ctx.Err() != nil {
		return nil
	}
	got, err := inv.call(ctx, indices, fn)
	if err == nil && len(got) > 0 {
		return got
	}
	if len(indices) <= 1 {
		return nil
	}

	mid := len(indices) / 2
	inv.log.Debug("splitting failed batch", "size", len(indices), "err", err)
	merged := inv.splitRetry(ctx, indices[:mid], fn)
	if merged == nil {
		merged = make(map[int]bool)
	}
	for i := range inv.splitRetry(ctx, indices[mid:], fn) {
		merged[i] = true
	}
	return merged
}

// call gates one service call through the limiter and validates the
// reported indices against the requested set.
func (inv *Invoker) call(ctx context.Context, indices []int, fn Func) (map[int]bool, error) {
	if err := inv.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	inv.mu.Lock()
	inv.calls++
	inv.mu.Unlock()

	done, err := fn(ctx, indices)
	if err != nil {
		return nil, err
	}
	requested := make(map[int]bool, len(indices))
	for _, i := range indices {
		requested[i] = true
	}
	satisfied := make(map[int]bool, len(done))
	for _, i := range done {
		if requested[i] {
			satisfied[i] = true
		}
	}
	return satisfied, nil
}

func (inv *Invoker) callCount() int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.calls
}
