package storage

import (
	"testing"
	"time"

	"github.com/poiesic/curator/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalItem(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name string
		item *core.Item
	}{
		{
			name: "raw fetched item",
			item: &core.Item{
				Key:         "example.com/posts/launch",
				URL:         "https://example.com/posts/launch",
				Title:       "Launch Day",
				Description: "A short description.",
				Source:      "example_blog",
				Language:    "en",
				Published:   now.Add(-2 * time.Hour),
				FetchedAt:   now,
				Relevant:    true,
			},
		},
		{
			name: "annotated and scored item",
			item: &core.Item{
				Key:         "example.com/posts/benchmarks",
				URL:         "https://example.com/posts/benchmarks",
				Title:       "New Benchmarks",
				Description: "Benchmark results for the latest release.",
				Body:        "Full article body with several paragraphs of detail.",
				Source:      "example_blog",
				Language:    "en",
				Image:       "https://example.com/img/benchmarks.png",
				Published:   now.Add(-26 * time.Hour),
				FetchedAt:   now,
				Annotation: &core.Annotation{
					DisplayTitle: "Benchmark sweep puts the new release ahead",
					Summary:      "The release leads on most published benchmarks.",
					KeyPoints:    []string{"tops three suites", "open weights"},
					Entities:     []string{"ExampleCorp"},
					Cluster:      "model-release",
				},
				Category: "research",
				Subs:     &core.SubScores{8, 7, 9},
				Score:    82.5,
				Relevant: true,
				Recent:   true,
				Related:  []core.ID{core.IDFromKey("example.com/posts/launch"), 42},
			},
		},
		{
			name: "duplicate with korean text",
			item: &core.Item{
				Key:       "example.kr/뉴스/모델-공개",
				URL:       "https://example.kr/뉴스/모델-공개",
				Title:     "새 모델 공개",
				Source:    "example_kr",
				Language:  "ko",
				Published: now,
				FetchedAt: now,
				Relevant:  true,
				Duplicate: true,
				Origin:    "example.com/posts/launch",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalItem(tt.item)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalItem(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			assert.Equal(t, tt.item.Key, decoded.Key)
			assert.Equal(t, tt.item.URL, decoded.URL)
			assert.Equal(t, tt.item.Title, decoded.Title)
			assert.Equal(t, tt.item.Description, decoded.Description)
			assert.Equal(t, tt.item.Body, decoded.Body)
			assert.Equal(t, tt.item.Source, decoded.Source)
			assert.Equal(t, tt.item.Language, decoded.Language)
			assert.Equal(t, tt.item.Image, decoded.Image)
			assert.True(t, tt.item.Published.Equal(decoded.Published))
			assert.True(t, tt.item.FetchedAt.Equal(decoded.FetchedAt))
			assert.Equal(t, tt.item.Annotation, decoded.Annotation)
			assert.Equal(t, tt.item.Category, decoded.Category)
			assert.Equal(t, tt.item.Subs, decoded.Subs)
			assert.Equal(t, tt.item.Score, decoded.Score)
			assert.Equal(t, tt.item.Relevant, decoded.Relevant)
			assert.Equal(t, tt.item.Recent, decoded.Recent)
			assert.Equal(t, tt.item.Duplicate, decoded.Duplicate)
			assert.Equal(t, tt.item.Origin, decoded.Origin)
			// Handle nil vs empty slice
			if len(tt.item.Related) == 0 {
				assert.Empty(t, decoded.Related)
			} else {
				assert.Equal(t, tt.item.Related, decoded.Related)
			}
		})
	}
}

func TestUnmarshalItem_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"invalid data", []byte{0xFF, 0xFF, 0xFF}},
		{"partial data", []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalItem(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestMarshalUnmarshalDigest(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	entry := core.Item{
		Key:       "example.com/posts/launch",
		URL:       "https://example.com/posts/launch",
		Title:     "Launch Day",
		Source:    "example_blog",
		Language:  "en",
		Published: now,
		FetchedAt: now,
		Category:  "products",
		Score:     100,
		Relevant:  true,
	}

	digest := &core.Digest{
		Date:          "2026-03-14",
		Highlights:    []core.Item{entry},
		Categories:    map[string][]core.Item{"products": {entry}},
		CategoryOrder: []string{"products"},
		Sources:       map[string][]core.Item{"aitimes": {entry}},
		SourceOrder:   []string{"aitimes"},
		TotalCount:    1,
		Errors: []core.StageError{
			{Stage: "fetch", Message: "source timed out", At: now},
		},
		Timings:   map[string]float64{"fetch": 3.25, "rank": 11.5},
		Warnings:  []string{"category products below minimum"},
		UpdatedAt: now,
	}

	data := MarshalDigest(digest)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalDigest(data)
	require.NoError(t, err)
	require.NotNil(t, decoded)

	assert.Equal(t, digest.Date, decoded.Date)
	assert.Len(t, decoded.Highlights, 1)
	assert.Equal(t, entry.Key, decoded.Highlights[0].Key)
	assert.Equal(t, digest.CategoryOrder, decoded.CategoryOrder)
	assert.Equal(t, digest.SourceOrder, decoded.SourceOrder)
	assert.Equal(t, digest.TotalCount, decoded.TotalCount)
	assert.Equal(t, digest.Timings, decoded.Timings)
	assert.Equal(t, digest.Warnings, decoded.Warnings)
	require.Len(t, decoded.Errors, 1)
	assert.Equal(t, "fetch", decoded.Errors[0].Stage)
	assert.True(t, now.Equal(decoded.Errors[0].At))
	assert.True(t, digest.UpdatedAt.Equal(decoded.UpdatedAt))
	require.Contains(t, decoded.Categories, "products")
	assert.Equal(t, entry.Key, decoded.Categories["products"][0].Key)
	require.Contains(t, decoded.Sources, "aitimes")
	assert.Equal(t, entry.Key, decoded.Sources["aitimes"][0].Key)
}

func TestMarshalUnmarshalDigest_Empty(t *testing.T) {
	digest := &core.Digest{Date: "2026-03-14", UpdatedAt: time.Now().UTC()}

	decoded, err := UnmarshalDigest(MarshalDigest(digest))
	require.NoError(t, err)

	assert.Equal(t, "2026-03-14", decoded.Date)
	assert.Empty(t, decoded.Highlights)
	assert.Empty(t, decoded.Categories)
	assert.Empty(t, decoded.Sources)
	assert.Empty(t, decoded.Errors)
	assert.Empty(t, decoded.Warnings)
	assert.Zero(t, decoded.TotalCount)
}

func TestUnmarshalDigest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"invalid data", []byte{0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalDigest(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestRoundTripConsistency(t *testing.T) {
	t.Run("multiple marshal-unmarshal cycles", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		original := &core.Item{
			Key:       "example.com/posts/cycle",
			URL:       "https://example.com/posts/cycle",
			Title:     "Cycle Test",
			Source:    "example_blog",
			Language:  "en",
			Published: now,
			FetchedAt: now,
			Annotation: &core.Annotation{
				DisplayTitle: "A stable display title",
				Summary:      "A stable summary.",
			},
			Category: "research",
			Score:    97,
			Relevant: true,
		}

		current := original
		for i := 0; i < 3; i++ {
			data := MarshalItem(current)
			decoded, err := UnmarshalItem(data)
			require.NoError(t, err)
			current = decoded
		}

		assert.Equal(t, original.Key, current.Key)
		assert.Equal(t, original.Title, current.Title)
		assert.Equal(t, original.Annotation, current.Annotation)
		assert.Equal(t, original.Category, current.Category)
		assert.Equal(t, original.Score, current.Score)
		assert.True(t, original.Published.Equal(current.Published))
	})
}
