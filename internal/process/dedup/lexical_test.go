package dedup

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aipulse/pulse/internal/core/domain"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identical", a: "abcdefgh", b: "abcdefgh", want: 1},
		{name: "threshold boundary", a: "abcdefgh", b: "abcdefxy", want: 0.75},
		{name: "below threshold", a: "abcdefgh", b: "abcdexyz", want: 0.625},
		{name: "empty", a: "", b: "abc", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "openai raises $40b", NormalizeTitle("  OpenAI   Raises\t$40B "))
	// NFKC folds the fullwidth form to ASCII.
	assert.Equal(t, NormalizeTitle("GPT"), NormalizeTitle("ＧＰＴ"))
}

func TestMatchDayThresholdBoundary(t *testing.T) {
	events := []domain.Event{
		{ID: "e1", Title: "abcdefgh"},
		{ID: "e2", Title: "abcdefxy"},
	}

	marks := MatchDay(events)

	require.Len(t, marks, 1)
	assert.Equal(t, "e2", marks[0].EventID)
	assert.Equal(t, "e1", marks[0].CanonicalID)
	assert.Equal(t, domain.DuplicateLexical, marks[0].Kind)
}

func TestMatchDayBelowThresholdNoEntities(t *testing.T) {
	events := []domain.Event{
		{ID: "e1", Title: "abcdefgh"},
		{ID: "e2", Title: "abcdexyz"},
	}

	assert.Empty(t, MatchDay(events))
}

func TestMatchDayEntityAssisted(t *testing.T) {
	// Similarity 0.625 sits between the two thresholds; the shared entity
	// tips it into a match.
	events := []domain.Event{
		{ID: "e1", Title: "abcdefgh", Entities: []string{"OpenAI"}},
		{ID: "e2", Title: "abcdexyz", Entities: []string{"openai", "Microsoft"}},
	}

	marks := MatchDay(events)

	require.Len(t, marks, 1)
	assert.Equal(t, "e2", marks[0].EventID)
	assert.Equal(t, "e1", marks[0].CanonicalID)
}

func TestMatchDayEarliestStaysCanonical(t *testing.T) {
	// Events arrive in collection order; every later duplicate points at
	// the first event, not at each other.
	events := []domain.Event{
		{ID: "e1", Title: "abcdefgh"},
		{ID: "e2", Title: "abcdefgh"},
		{ID: "e3", Title: "abcdefgh"},
	}

	marks := MatchDay(events)

	require.Len(t, marks, 2)

	for _, m := range marks {
		assert.Equal(t, "e1", m.CanonicalID)
	}
}

func TestMatchDaySkipsExistingDuplicates(t *testing.T) {
	events := []domain.Event{
		{ID: "e1", Title: "abcdefgh"},
		{
			ID:          "e2",
			Title:       "abcdefgh",
			DuplicateOf: &domain.DuplicateOf{Kind: domain.DuplicateSemantic, CanonicalID: "e0"},
		},
	}

	assert.Empty(t, MatchDay(events))
}

func TestMatchDayIdempotent(t *testing.T) {
	events := []domain.Event{
		{ID: "e1", Title: "abcdefgh"},
		{ID: "e2", Title: "abcdefxy"},
	}

	first := MatchDay(events)
	require.Len(t, first, 1)

	// Apply the marks the way storage would, then rerun.
	for _, m := range first {
		for i := range events {
			if events[i].ID == m.EventID {
				events[i].DuplicateOf = &domain.DuplicateOf{Kind: m.Kind, CanonicalID: m.CanonicalID}
			}
		}
	}

	assert.Empty(t, MatchDay(events))
}

type mockRepository struct {
	events map[string][]domain.Event
	dates  []string
	marks  []domain.DuplicateMark
}

func (m *mockRepository) ListEventsForDay(_ context.Context, date string) ([]domain.Event, error) {
	return m.events[date], nil
}

func (m *mockRepository) MarkDuplicates(_ context.Context, marks []domain.DuplicateMark) error {
	m.marks = append(m.marks, marks...)
	return nil
}

func (m *mockRepository) EventDates(_ context.Context, _ int) ([]string, error) {
	return m.dates, nil
}

func TestMatcherRun(t *testing.T) {
	repo := &mockRepository{
		events: map[string][]domain.Event{
			"2025-06-15": {
				{ID: "e1", Title: "abcdefgh"},
				{ID: "e2", Title: "abcdefxy"},
			},
		},
	}

	logger := zerolog.Nop()
	matcher := NewMatcher(repo, &logger)

	marked, err := matcher.Run(context.Background(), "2025-06-15")
	require.NoError(t, err)

	assert.Equal(t, 1, marked)
	require.Len(t, repo.marks, 1)
	assert.Equal(t, "e2", repo.marks[0].EventID)
}

func TestMatcherBackfill(t *testing.T) {
	repo := &mockRepository{
		dates: []string{"2025-06-14", "2025-06-15"},
		events: map[string][]domain.Event{
			"2025-06-14": {
				{ID: "a1", Title: "abcdefgh"},
				{ID: "a2", Title: "abcdefxy"},
			},
			"2025-06-15": {
				{ID: "b1", Title: "unrelated title"},
			},
		},
	}

	logger := zerolog.Nop()
	matcher := NewMatcher(repo, &logger)

	marked, err := matcher.Backfill(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 1, marked)
}
