package curation

import (
	"context"
	"slices"

	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/rank"
	"github.com/poiesic/curator/workflow"
)

// rankStage scores the classified collection. In scored mode a re-entered
// pass halves the batch size per attempt, down to single items, because
// smaller batches localize the failures that cost coverage.
func (e *Engine) rankStage(ctx context.Context, s workflow.State) (workflow.State, error) {
	items := channelValue[[]core.Item](s, itemsChannel)
	attempts := channelValue[int](s, attemptsChannel)

	if len(items) == 0 {
		return workflow.State{
			coverageChannel: float64(1),
			attemptsChannel: attempts + 1,
		}, nil
	}

	// Ranking scores in place; the snapshot's slice stays untouched.
	ranked := slices.Clone(items)

	var opts []rank.RankOption
	if e.config.Rank.Mode == rank.ModeScored && attempts > 0 {
		size := e.config.Rank.ScoreBatchSize
		for i := 0; i < attempts && size > 1; i++ {
			size /= 2
		}
		opts = append(opts, rank.WithBatchSize(max(size, 1)))
	}

	report, err := e.ranker.Rank(ctx, ranked, opts...)
	if err != nil {
		return nil, err
	}

	return workflow.State{
		itemsChannel:    ranked,
		coverageChannel: report.Coverage(),
		attemptsChannel: attempts + 1,
	}, nil
}

// rankRouter re-enters the ranking stage while service coverage is below
// the threshold and the retry budget lasts; otherwise the run advances with
// whatever scores exist. Low coverage is degradation, not failure.
func (e *Engine) rankRouter(s workflow.State) []string {
	coverage := channelValue[float64](s, coverageChannel)
	attempts := channelValue[int](s, attemptsChannel)

	if coverage < e.config.CoverageThreshold && attempts <= e.config.MaxRankRetries {
		e.logger.Warn("rank coverage below threshold, retrying",
			"coverage", coverage, "threshold", e.config.CoverageThreshold,
			"attempt", attempts)
		return []string{stageRank}
	}
	return []string{stageDedupe}
}
