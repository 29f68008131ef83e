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

package batch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoker(t *testing.T) *Invoker {
	t.Helper()
	limiter, err := NewLimiter(1000, time.Second)
	require.NoError(t, err)
	inv, err := NewInvoker(4, limiter)
	require.NoError(t, err)
	t.Cleanup(inv.Release)
	return inv
}

func TestNewInvoker_Validation(t *testing.T) {
	limiter, err := NewLimiter(1, time.Second)
	require.NoError(t, err)

	_, err = NewInvoker(0, limiter)
	assert.ErrorIs(t, err, ErrInvalidPoolSize)

	_, err = NewInvoker(2, nil)
	assert.ErrorIs(t, err, ErrLimiterRequired)
}

func TestInvoker_Run_AllSatisfied(t *testing.T) {
	inv := newTestInvoker(t)

	var mu sync.Mutex
	seen := make(map[int]int)
	fn := func(ctx context.Context, indices []int) ([]int, error) {
		mu.Lock()
		for _, i := range indices {
			seen[i]++
		}
		mu.Unlock()
		return indices, nil
	}

	report, err := inv.Run(context.Background(), 10, 4, fn, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, report.Satisfied)
	assert.Equal(t, 0, report.FellBack)
	assert.Equal(t, 3, report.Calls, "10 payloads at size 4 is 3 batches")

	require.Len(t, seen, 10)
	for i, n := range seen {
		assert.Equal(t, 1, n, "payload %d should be requested exactly once", i)
	}
}

func TestInvoker_Run_SplitsFailedBatchToSingles(t *testing.T) {
	inv := newTestInvoker(t)

	fn := func(ctx context.Context, indices []int) ([]int, error) {
		if len(indices) > 1 {
			return nil, errors.New("malformed response")
		}
		return indices, nil
	}

	report, err := inv.Run(context.Background(), 4, 4, fn, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, report.Satisfied, "halving should reach every payload")
	assert.Equal(t, 0, report.FellBack)
	assert.Equal(t, 7, report.Calls, "one batch call, two halves, four singles")
}

func TestInvoker_Run_PartialRetriesMissingIndividually(t *testing.T) {
	inv := newTestInvoker(t)

	var mu sync.Mutex
	var singles []int
	fn := func(ctx context.Context, indices []int) ([]int, error) {
		if len(indices) == 3 {
			return []int{0, 2}, nil
		}
		mu.Lock()
		singles = append(singles, indices...)
		mu.Unlock()
		return indices, nil
	}

	report, err := inv.Run(context.Background(), 3, 3, fn, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Satisfied)
	assert.Equal(t, 2, report.Calls, "only the missing payload should be retried")
	assert.Equal(t, []int{1}, singles)
}

func TestInvoker_Run_FallbackCoversEverything(t *testing.T) {
	inv := newTestInvoker(t)

	fn := func(ctx context.Context, indices []int) ([]int, error) {
		return nil, errors.New("service down")
	}

	var mu sync.Mutex
	filled := make(map[int]bool)
	fallback := func(i int) {
		mu.Lock()
		filled[i] = true
		mu.Unlock()
	}

	report, err := inv.Run(context.Background(), 3, 2, fn, fallback)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Satisfied)
	assert.Equal(t, 3, report.FellBack)
	assert.Equal(t, map[int]bool{0: true, 1: true, 2: true}, filled,
		"every payload should get a fallback value")
}

func TestInvoker_Run_IgnoresUnknownIndices(t *testing.T) {
	inv := newTestInvoker(t)

	fn := func(ctx context.Context, indices []int) ([]int, error) {
		return append(append([]int{}, indices...), 99), nil
	}

	report, err := inv.Run(context.Background(), 2, 2, fn, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Satisfied, "indices outside the request are dropped")
	assert.Equal(t, 0, report.FellBack)
}

func TestInvoker_Run_InvalidBatchSize(t *testing.T) {
	inv := newTestInvoker(t)

	fn := func(ctx context.Context, indices []int) ([]int, error) {
		return indices, nil
	}
	_, err := inv.Run(context.Background(), 4, 0, fn, nil)
	assert.ErrorIs(t, err, ErrInvalidBatchSize)
}

func TestInvoker_Run_EmptyTotal(t *testing.T) {
	inv := newTestInvoker(t)

	called := false
	fn := func(ctx context.Context, indices []int) ([]int, error) {
		called = true
		return indices, nil
	}

	report, err := inv.Run(context.Background(), 0, 4, fn, nil)
	require.NoError(t, err)
	assert.Equal(t, Report{}, report)
	assert.False(t, called)
}
