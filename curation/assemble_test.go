package curation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/curator/ai/mock"
	"github.com/poiesic/curator/core"
	"github.com/poiesic/curator/feeds"
	"github.com/poiesic/curator/workflow"
)

func sectionItem(source, key, title string, published time.Time) core.Item {
	it := feedItem(source, key, title, published)
	it.Language = "ko"
	it.Relevant = true
	return it
}

func TestAssembleStage_BuildsSourceSections(t *testing.T) {
	sources := []feeds.Descriptor{
		{Key: "gazette", Name: "Gazette", Endpoint: "https://gazette.test/rss", Role: feeds.RoleSection},
		{Key: "herald", Name: "Herald", Endpoint: "https://herald.test/rss", Role: feeds.RoleSection},
	}
	sections := []core.Item{
		sectionItem("gazette", "gazette.test/ai-act", "정부, 인공지능 기본법 시행령 발표", runDay.Add(-3*time.Hour)),
		sectionItem("gazette", "gazette.test/chip", "국내 스타트업, 추론 가속 칩 시제품 공개", runDay.Add(-time.Hour)),
		sectionItem("gazette", "gazette.test/dataset", "대학 연구소, 멀티모달 데이터셋 구축 착수", runDay.Add(-4*time.Hour)),
		sectionItem("gazette", "gazette.test/dc", "클라우드 업체, 지역 데이터센터 증설 계획", runDay.Add(-5*time.Hour)),
		// Same wire story as the gazette one, published later.
		sectionItem("herald", "herald.test/ai-act", "정부, 인공지능 기본법 시행령 공개", runDay.Add(-2*time.Hour)),
		sectionItem("herald", "herald.test/finance", "금융권, 생성형 모델 도입 지침 마련", runDay.Add(-2*time.Hour)),
	}
	offTopic := sectionItem("herald", "herald.test/sports", "주말 축구 리그 결과 정리", runDay.Add(-time.Hour))
	offTopic.Relevant = false
	sections = append(sections, offTopic)

	cfg := Config{Sources: sources, SectionLimit: 3}
	eng := testEngine(t, mock.NewMockGenerator(), staticFetcher(nil), cfg)

	state := workflow.State{
		sectionsChannel: sections,
		selectedChannel: map[string][]core.Item{},
	}
	update, err := eng.assembleStage(context.Background(), state)
	require.NoError(t, err)

	digest := update[digestChannel].(*core.Digest)
	assert.Equal(t, "2026-03-20", digest.Date)
	assert.Equal(t, runDay.UTC(), digest.UpdatedAt)
	assert.Empty(t, digest.CategoryOrder)
	assert.Zero(t, digest.TotalCount, "section items never count toward the category total")

	require.Equal(t, []string{"gazette", "herald"}, digest.SourceOrder)

	gazette := digest.Sources["gazette"]
	require.Len(t, gazette, 3, "section capped at the limit")
	assert.Equal(t, "gazette.test/chip", gazette[0].Key, "newest first")
	assert.Equal(t, "gazette.test/ai-act", gazette[1].Key)
	assert.Equal(t, "gazette.test/dataset", gazette[2].Key)

	herald := digest.Sources["herald"]
	require.Len(t, herald, 1, "syndicated and off-topic items stay out")
	assert.Equal(t, "herald.test/finance", herald[0].Key)

	marked := update[sectionsChannel].([]core.Item)
	dup := itemByKey(t, marked, "herald.test/ai-act", "herald")
	assert.True(t, dup.Duplicate)
	assert.Equal(t, "gazette.test/ai-act", dup.Origin)
}

func TestAssembleStage_CategoryOrderSkipsEmpty(t *testing.T) {
	sources := []feeds.Descriptor{{Key: "wire", Name: "Wire", Endpoint: "https://wire.test/rss"}}
	eng := testEngine(t, mock.NewMockGenerator(), staticFetcher(nil), Config{Sources: sources})

	research := []core.Item{
		feedItem("wire", "wire.test/paper", "Scaling Law Revisited", runDay.Add(-time.Hour)),
		feedItem("wire", "wire.test/eval", "Evals Move To Hard Tasks", runDay.Add(-2*time.Hour)),
	}
	business := []core.Item{
		feedItem("wire", "wire.test/deal", "Chipmaker Signs Capacity Deal", runDay.Add(-time.Hour)),
	}
	highlight := research[0]

	state := workflow.State{
		selectedChannel: map[string][]core.Item{
			"research":          research,
			"industry_business": business,
		},
		highlightsChannel: []core.Item{highlight},
	}
	update, err := eng.assembleStage(context.Background(), state)
	require.NoError(t, err)

	digest := update[digestChannel].(*core.Digest)
	assert.Equal(t, []string{"research", "industry_business"}, digest.CategoryOrder)
	assert.Equal(t, 3, digest.TotalCount)
	assert.Len(t, digest.Categories["research"], 2)
	assert.Empty(t, digest.SourceOrder)
	require.Len(t, digest.Highlights, 1)
	assert.Equal(t, "wire.test/paper", digest.Highlights[0].Key)
}
