package rank

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/curator/ai"
	"github.com/poiesic/curator/ai/mock"
	"github.com/poiesic/curator/core"
)

func ranked(key, title, category string, published time.Time) core.Item {
	it := candidate(key, title)
	it.Category = category
	it.Published = published
	return it
}

func TestNewRanker_Validation(t *testing.T) {
	limiter := testLimiter(t)

	_, err := NewRanker(nil, limiter, testConfig())
	assert.ErrorIs(t, err, ErrGeneratorRequired)

	_, err = NewRanker(mock.NewMockGenerator(), nil, testConfig())
	assert.ErrorIs(t, err, ErrLimiterRequired)
}

func TestRanker_DirectMode_PermutationToScores(t *testing.T) {
	gen := mock.NewMockGenerator(`[2,0,3,1]`)

	r, err := NewRanker(gen, testLimiter(t), testConfig(), WithPoolSize(1))
	require.NoError(t, err)
	t.Cleanup(r.Release)

	items := []core.Item{
		ranked("a.example.com/1", "Alpha", "research", base),
		ranked("b.example.com/2", "Beta", "research", base),
		ranked("c.example.com/3", "Gamma", "research", base),
		ranked("d.example.com/4", "Delta", "research", base),
	}

	report, err := r.Rank(context.Background(), items)
	require.NoError(t, err)

	// Floor 40 over four ranks steps by 20: 100, 80, 60, 40.
	assert.InDelta(t, 100, items[2].Score, 1e-9, "first rank is exactly 100")
	assert.InDelta(t, 80, items[0].Score, 1e-9)
	assert.InDelta(t, 60, items[3].Score, 1e-9)
	assert.InDelta(t, 40, items[1].Score, 1e-9, "last rank sits on the floor")

	assert.Equal(t, 4, report.Ranked)
	assert.Equal(t, 1, report.Calls)
	assert.InDelta(t, 1.0, report.Coverage(), 1e-9)
}

func TestRanker_DirectMode_RepairsBadPermutation(t *testing.T) {
	// Index 2 repeated, 9 out of range, 1 omitted entirely.
	gen := mock.NewMockGenerator(`[2,2,9,0]`)

	r, err := NewRanker(gen, testLimiter(t), testConfig(), WithPoolSize(1))
	require.NoError(t, err)
	t.Cleanup(r.Release)

	items := []core.Item{
		ranked("a.example.com/1", "Alpha", "research", base),
		ranked("b.example.com/2", "Beta", "research", base),
		ranked("c.example.com/3", "Gamma", "research", base),
	}

	report, err := r.Rank(context.Background(), items)
	require.NoError(t, err)

	assert.InDelta(t, 100, items[2].Score, 1e-9)
	assert.InDelta(t, 70, items[0].Score, 1e-9)
	assert.InDelta(t, 40, items[1].Score, 1e-9, "omitted index appended at the end, not dropped")
	assert.Equal(t, 3, report.Ranked)
}

func TestRanker_DirectMode_UnwrapsEnvelope(t *testing.T) {
	gen := mock.NewMockGenerator(`{"ranking":[1,0]}`)

	r, err := NewRanker(gen, testLimiter(t), testConfig(), WithPoolSize(1))
	require.NoError(t, err)
	t.Cleanup(r.Release)

	items := []core.Item{
		ranked("a.example.com/1", "Alpha", "research", base),
		ranked("b.example.com/2", "Beta", "research", base),
	}

	_, err = r.Rank(context.Background(), items)
	require.NoError(t, err)

	assert.InDelta(t, 40, items[0].Score, 1e-9)
	assert.InDelta(t, 100, items[1].Score, 1e-9)
}

func TestRanker_DirectMode_SingleItemSkipsService(t *testing.T) {
	gen := mock.NewMockGenerator()

	r, err := NewRanker(gen, testLimiter(t), testConfig(), WithPoolSize(1))
	require.NoError(t, err)
	t.Cleanup(r.Release)

	items := []core.Item{ranked("a.example.com/1", "Alpha", "research", base)}

	report, err := r.Rank(context.Background(), items)
	require.NoError(t, err)

	assert.InDelta(t, 100, items[0].Score, 1e-9)
	assert.Zero(t, gen.CallCount())
	assert.Equal(t, 1, report.Ranked)
}

func TestRanker_DirectMode_FallsBackToRecency(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.InvokeFunc = func(ctx context.Context, prompt string, opts ...ai.InvokeOption) (string, error) {
		return "", errors.New("service unavailable")
	}

	r, err := NewRanker(gen, testLimiter(t), testConfig(), WithPoolSize(1))
	require.NoError(t, err)
	t.Cleanup(r.Release)

	items := []core.Item{
		ranked("a.example.com/old", "Oldest", "research", base.Add(-48*time.Hour)),
		ranked("b.example.com/new", "Newest", "research", base),
		ranked("c.example.com/mid", "Middle", "research", base.Add(-24*time.Hour)),
	}

	report, err := r.Rank(context.Background(), items)
	require.NoError(t, err)

	assert.InDelta(t, 100, items[1].Score, 1e-9, "newest item ranks first on fallback")
	assert.InDelta(t, 70, items[2].Score, 1e-9)
	assert.InDelta(t, 40, items[0].Score, 1e-9)
	assert.Equal(t, 3, report.FellBack)
	assert.Zero(t, report.Ranked)
	assert.InDelta(t, 0, report.Coverage(), 1e-9)
}

func TestRanker_DirectMode_OutOfRangeRankingFallsBack(t *testing.T) {
	gen := mock.NewMockGenerator(`[7,8,9]`)

	r, err := NewRanker(gen, testLimiter(t), testConfig(), WithPoolSize(1))
	require.NoError(t, err)
	t.Cleanup(r.Release)

	items := []core.Item{
		ranked("a.example.com/old", "Older", "research", base.Add(-time.Hour)),
		ranked("b.example.com/new", "Newer", "research", base),
	}

	report, err := r.Rank(context.Background(), items)
	require.NoError(t, err)

	assert.InDelta(t, 100, items[1].Score, 1e-9, "unusable ranking falls back to recency")
	assert.InDelta(t, 40, items[0].Score, 1e-9)
	assert.Equal(t, 2, report.FellBack)
}

func TestRanker_DirectMode_CategoriesRankedIndependently(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.InvokeFunc = func(ctx context.Context, prompt string, opts ...ai.InvokeOption) (string, error) {
		return `[1,0]`, nil
	}

	r, err := NewRanker(gen, testLimiter(t), testConfig(), WithPoolSize(1))
	require.NoError(t, err)
	t.Cleanup(r.Release)

	items := []core.Item{
		ranked("a.example.com/1", "Paper one", "research", base),
		ranked("b.example.com/2", "Paper two", "research", base),
		ranked("c.example.com/3", "Tool one", "models_products", base),
		ranked("d.example.com/4", "Tool two", "models_products", base),
	}

	report, err := r.Rank(context.Background(), items)
	require.NoError(t, err)

	assert.InDelta(t, 40, items[0].Score, 1e-9)
	assert.InDelta(t, 100, items[1].Score, 1e-9)
	assert.InDelta(t, 40, items[2].Score, 1e-9)
	assert.InDelta(t, 100, items[3].Score, 1e-9)
	assert.Equal(t, 2, report.Calls, "one permutation call per category")

	prompts := gen.Prompts()
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], `"research" category`, "categories rank in configured order")
	assert.Contains(t, prompts[1], `"models_products" category`)
}

func TestRanker_ScoredMode_CombinesWeights(t *testing.T) {
	gen := mock.NewMockGenerator(
		`[{"i":0,"nov":8,"imp":6,"buzz":4},{"i":1,"nov":2,"imp":10,"buzz":0}]`,
	)
	cfg := testConfig()
	cfg.Mode = ModeScored
	cfg.ScoreBatchSize = 2

	r, err := NewRanker(gen, testLimiter(t), cfg, WithPoolSize(1))
	require.NoError(t, err)
	t.Cleanup(r.Release)

	items := []core.Item{
		ranked("a.example.com/1", "Alpha", "research", base),
		ranked("b.example.com/2", "Beta", "research", base),
	}

	report, err := r.Rank(context.Background(), items)
	require.NoError(t, err)

	// Research weights 4/3/3: 8*4+6*3+4*3 = 62, 2*4+10*3+0*3 = 38.
	require.NotNil(t, items[0].Subs)
	assert.Equal(t, core.SubScores{8, 6, 4}, *items[0].Subs)
	assert.InDelta(t, 62, items[0].Score, 1e-9)
	require.NotNil(t, items[1].Subs)
	assert.Equal(t, core.SubScores{2, 10, 0}, *items[1].Subs)
	assert.InDelta(t, 38, items[1].Score, 1e-9)
	assert.Equal(t, 2, report.Ranked)
}

func TestRanker_ScoredMode_ClampsSubScores(t *testing.T) {
	gen := mock.NewMockGenerator(`[{"i":0,"nov":15,"imp":-3,"buzz":7}]`)
	cfg := testConfig()
	cfg.Mode = ModeScored

	r, err := NewRanker(gen, testLimiter(t), cfg, WithPoolSize(1))
	require.NoError(t, err)
	t.Cleanup(r.Release)

	items := []core.Item{ranked("a.example.com/1", "Alpha", "research", base)}

	_, err = r.Rank(context.Background(), items)
	require.NoError(t, err)

	require.NotNil(t, items[0].Subs)
	assert.Equal(t, core.SubScores{10, 0, 7}, *items[0].Subs)
	assert.InDelta(t, 61, items[0].Score, 1e-9)
}

func TestRanker_ScoredMode_FallbackScoresTwenty(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.InvokeFunc = func(ctx context.Context, prompt string, opts ...ai.InvokeOption) (string, error) {
		return "", errors.New("service unavailable")
	}
	cfg := testConfig()
	cfg.Mode = ModeScored

	r, err := NewRanker(gen, testLimiter(t), cfg, WithPoolSize(1))
	require.NoError(t, err)
	t.Cleanup(r.Release)

	items := []core.Item{ranked("a.example.com/1", "Alpha", "research", base)}

	report, err := r.Rank(context.Background(), items)
	require.NoError(t, err)

	require.NotNil(t, items[0].Subs)
	assert.Equal(t, core.SubScores{2, 2, 2}, *items[0].Subs)
	assert.InDelta(t, 20, items[0].Score, 1e-9, "unscored fallback lands on 20 with 4/3/3 weights")
	assert.Equal(t, 1, report.FellBack)
}

func TestRanker_ScoredMode_SkipsAlreadyScored(t *testing.T) {
	gen := mock.NewMockGenerator()
	gen.InvokeFunc = func(ctx context.Context, prompt string, opts ...ai.InvokeOption) (string, error) {
		return "", errors.New("service unavailable")
	}
	cfg := testConfig()
	cfg.Mode = ModeScored

	r, err := NewRanker(gen, testLimiter(t), cfg, WithPoolSize(1))
	require.NoError(t, err)
	t.Cleanup(r.Release)

	it := ranked("a.example.com/1", "Alpha", "research", base)
	it.Subs = &core.SubScores{9, 9, 9}
	it.Score = 90
	items := []core.Item{it}

	report, err := r.Rank(context.Background(), items)
	require.NoError(t, err)

	assert.InDelta(t, 90, items[0].Score, 1e-9, "a retry pass keeps earlier sub-scores")
	assert.Equal(t, 1, report.Ranked)
	assert.Zero(t, report.FellBack)
	assert.Zero(t, gen.CallCount())
}

func TestLinearScore(t *testing.T) {
	assert.InDelta(t, 100, linearScore(0, 5, 40), 1e-9, "first rank is exactly 100")
	assert.InDelta(t, 70, linearScore(2, 5, 40), 1e-9)
	assert.InDelta(t, 40, linearScore(4, 5, 40), 1e-9, "last rank is exactly the floor")
	assert.InDelta(t, 100, linearScore(0, 1, 40), 1e-9, "a group of one scores 100")

	for pos := 1; pos < 5; pos++ {
		assert.Less(t, linearScore(pos, 5, 40), linearScore(pos-1, 5, 40),
			"scores decrease strictly with rank")
	}
}

func TestCompletePermutation(t *testing.T) {
	order, matched := completePermutation([]int{2, 0, 1}, 3)
	assert.Equal(t, []int{2, 0, 1}, order)
	assert.Equal(t, 3, matched)

	order, matched = completePermutation([]int{2, 2, 9, 0}, 3)
	assert.Equal(t, []int{2, 0, 1}, order, "repeats dropped, omissions appended ascending")
	assert.Equal(t, 2, matched)

	order, matched = completePermutation(nil, 2)
	assert.Equal(t, []int{0, 1}, order)
	assert.Zero(t, matched)
}

func TestReport_Coverage(t *testing.T) {
	assert.InDelta(t, 1, Report{}.Coverage(), 1e-9, "empty pass counts as full coverage")
	assert.InDelta(t, 0.75, Report{Ranked: 3, FellBack: 1}.Coverage(), 1e-9)
}
