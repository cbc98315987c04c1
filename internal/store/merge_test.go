package store

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/kudzimusar/morning-pulse-sub002/internal/model"
)

func runWith(createdAt time.Time, categories map[string][]model.Article) *model.AggregationRun {
	return &model.AggregationRun{
		Date:       "2026-08-28",
		Country:    "Zimbabwe",
		Categories: categories,
		CreatedAt:  createdAt,
	}
}

func TestMergeRuns(t *testing.T) {
	morning := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	noon := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	existing := runWith(morning, map[string][]model.Article{
		"Local": {
			{ID: "l1", Category: "Local", Headline: "Morning local story"},
			{ID: "l2", Category: "Local", Headline: "Second local story"},
		},
		"Business": {
			{ID: "b1", Category: "Business", Headline: "Morning business story"},
		},
	})
	incoming := runWith(noon, map[string][]model.Article{
		"Business": {
			{ID: "b2", Category: "Business", Headline: "Noon business story"},
		},
		"Sports": {
			{ID: "s1", Category: "Sports", Headline: "Noon sports story"},
		},
	})

	merged := mergeRuns(existing, incoming)

	tests := []struct {
		name     string
		category string
		wantIDs  []string
	}{
		{
			name:     "category absent from incoming is kept",
			category: "Local",
			wantIDs:  []string{"l1", "l2"},
		},
		{
			name:     "category named by incoming is replaced wholesale",
			category: "Business",
			wantIDs:  []string{"b2"},
		},
		{
			name:     "category new to incoming is added",
			category: "Sports",
			wantIDs:  []string{"s1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			articles := merged.Categories[tt.category]
			assert.Equal(t, len(tt.wantIDs), len(articles))
			for i, id := range tt.wantIDs {
				assert.Equal(t, id, articles[i].ID)
			}
		})
	}

	// Metadata follows the incoming run.
	assert.Equal(t, noon, merged.CreatedAt)
	assert.Equal(t, 3, len(merged.Categories))
}

func TestMergeRunsNoExistingDocument(t *testing.T) {
	incoming := runWith(time.Now(), map[string][]model.Article{
		"Local": {{ID: "l1", Category: "Local", Headline: "Only story"}},
	})

	merged := mergeRuns(nil, incoming)

	assert.Equal(t, incoming, merged)
}

func TestMergeRunsDoesNotMutateInputs(t *testing.T) {
	existing := runWith(time.Now(), map[string][]model.Article{
		"Local": {{ID: "l1", Category: "Local", Headline: "Kept story"}},
	})
	incoming := runWith(time.Now(), map[string][]model.Article{
		"Local": {{ID: "l2", Category: "Local", Headline: "Replacement story"}},
	})

	mergeRuns(existing, incoming)

	assert.Equal(t, "l1", existing.Categories["Local"][0].ID)
	assert.Equal(t, "l2", incoming.Categories["Local"][0].ID)
	assert.Equal(t, 1, len(existing.Categories))
}
