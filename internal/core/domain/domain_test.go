package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventDayBucket(t *testing.T) {
	published := time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC)
	collected := time.Date(2025, 6, 16, 1, 0, 0, 0, time.UTC)

	withPublished := Event{PublishedAt: published, CollectedAt: collected}
	assert.Equal(t, "2025-06-15", withPublished.DayBucket())

	withoutPublished := Event{CollectedAt: collected}
	assert.Equal(t, "2025-06-16", withoutPublished.DayBucket())
}

func TestEventIsCanonical(t *testing.T) {
	ev := Event{ID: "e1"}
	assert.True(t, ev.IsCanonical())

	ev.DuplicateOf = &DuplicateOf{Kind: DuplicateLexical, CanonicalID: "e0"}
	assert.False(t, ev.IsCanonical())
}

func TestSentimentSummaryPercentages(t *testing.T) {
	summary := SentimentSummary{Positive: 3, Negative: 1, Neutral: 4, Total: 8}

	positive, negative, neutral, mixed := summary.Percentages()

	assert.InDelta(t, 37.5, positive, 1e-6)
	assert.InDelta(t, 12.5, negative, 1e-6)
	assert.InDelta(t, 50, neutral, 1e-6)
	assert.Zero(t, mixed)
}

func TestSentimentSummaryPercentagesEmpty(t *testing.T) {
	positive, negative, neutral, mixed := SentimentSummary{}.Percentages()

	assert.Zero(t, positive)
	assert.Zero(t, negative)
	assert.Zero(t, neutral)
	assert.Zero(t, mixed)
}
