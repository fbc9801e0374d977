package semdedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aipulse/pulse/internal/core/domain"
	"github.com/aipulse/pulse/internal/core/llm"
)

type stubGrouper struct {
	result llm.GroupingResult
	err    error
	calls  int
}

func (s *stubGrouper) GroupTitles(_ context.Context, _ []string) (llm.GroupingResult, error) {
	s.calls++
	return s.result, s.err
}

type fakeRepository struct {
	events []domain.Event
	marks  []domain.DuplicateMark
	dates  []string
}

func (f *fakeRepository) ListCanonicalForDay(_ context.Context, _ string) ([]domain.Event, error) {
	var canonical []domain.Event

	for _, ev := range f.events {
		if ev.IsCanonical() {
			canonical = append(canonical, ev)
		}
	}

	return canonical, nil
}

func (f *fakeRepository) MarkDuplicates(_ context.Context, marks []domain.DuplicateMark) error {
	f.marks = append(f.marks, marks...)

	for _, m := range marks {
		for i := range f.events {
			if f.events[i].ID == m.EventID && f.events[i].IsCanonical() {
				f.events[i].DuplicateOf = &domain.DuplicateOf{Kind: m.Kind, CanonicalID: m.CanonicalID}
			}
		}
	}

	return nil
}

func (f *fakeRepository) EventDates(_ context.Context, _ int) ([]string, error) {
	return f.dates, nil
}

func newGrouper(repo Repository, stub TitleGrouper) *Grouper {
	logger := zerolog.Nop()
	return New(repo, stub, time.Second, &logger)
}

func TestRunGroupsRewordedHeadlines(t *testing.T) {
	// Four rewordings of one story; the model groups them all and the
	// earliest stays canonical.
	repo := &fakeRepository{
		events: []domain.Event{
			{ID: "e1", Title: "SoftBank to invest $40B in OpenAI"},
			{ID: "e2", Title: "OpenAI secures record funding round led by SoftBank"},
			{ID: "e3", Title: "Japanese giant backs ChatGPT maker with $40 billion"},
			{ID: "e4", Title: "OpenAI valuation soars on SoftBank mega-deal"},
		},
	}
	stub := &stubGrouper{
		result: llm.GroupingResult{DuplicateGroups: [][]int{{0, 1, 2, 3}}},
	}

	marked, err := newGrouper(repo, stub).Run(context.Background(), "2025-06-15")
	require.NoError(t, err)

	assert.Equal(t, 3, marked)
	require.Len(t, repo.marks, 3)

	for _, m := range repo.marks {
		assert.Equal(t, "e1", m.CanonicalID)
		assert.Equal(t, domain.DuplicateSemantic, m.Kind)
	}

	canonical, err := repo.ListCanonicalForDay(context.Background(), "2025-06-15")
	require.NoError(t, err)
	require.Len(t, canonical, 1)
	assert.Equal(t, "e1", canonical[0].ID)
}

func TestRunIdempotent(t *testing.T) {
	repo := &fakeRepository{
		events: []domain.Event{
			{ID: "e1", Title: "Story A"},
			{ID: "e2", Title: "Story A, reworded"},
		},
	}
	stub := &stubGrouper{
		result: llm.GroupingResult{DuplicateGroups: [][]int{{0, 1}}},
	}

	marked, err := newGrouper(repo, stub).Run(context.Background(), "2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	// One canonical event left; the second pass skips the day entirely.
	marked, err = newGrouper(repo, stub).Run(context.Background(), "2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, 0, marked)
	assert.Equal(t, 1, stub.calls)
}

func TestRunFailsOpenOnModelError(t *testing.T) {
	repo := &fakeRepository{
		events: []domain.Event{
			{ID: "e1", Title: "Story A"},
			{ID: "e2", Title: "Story B"},
		},
	}
	stub := &stubGrouper{err: errors.New("model unavailable")}

	marked, err := newGrouper(repo, stub).Run(context.Background(), "2025-06-15")
	require.NoError(t, err)

	assert.Equal(t, 0, marked)
	assert.Empty(t, repo.marks)
}

func TestRunSkipsSingleCanonicalEvent(t *testing.T) {
	repo := &fakeRepository{
		events: []domain.Event{{ID: "e1", Title: "Lonely story"}},
	}
	stub := &stubGrouper{}

	marked, err := newGrouper(repo, stub).Run(context.Background(), "2025-06-15")
	require.NoError(t, err)

	assert.Equal(t, 0, marked)
	assert.Equal(t, 0, stub.calls)
}

func TestMarksFromGroupsValidation(t *testing.T) {
	events := []domain.Event{
		{ID: "e1"}, {ID: "e2"}, {ID: "e3"},
	}

	tests := []struct {
		name   string
		groups [][]int
		want   int
	}{
		{name: "out of range index dropped", groups: [][]int{{0, 5}}, want: 0},
		{name: "negative index dropped", groups: [][]int{{-1, 1}}, want: 0},
		{name: "overlapping groups keep first claim", groups: [][]int{{0, 1}, {1, 2}}, want: 1},
		{name: "singleton group ignored", groups: [][]int{{2}}, want: 0},
		{name: "empty groups", groups: [][]int{}, want: 0},
		{name: "unsorted group keeps earliest canonical", groups: [][]int{{2, 0, 1}}, want: 2},
	}

	logger := zerolog.Nop()
	g := &Grouper{logger: &logger}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, g.marksFromGroups(events, tt.groups), tt.want)
		})
	}
}

func TestMarksFromGroupsUnsortedCanonical(t *testing.T) {
	events := []domain.Event{{ID: "e1"}, {ID: "e2"}, {ID: "e3"}}

	logger := zerolog.Nop()
	g := &Grouper{logger: &logger}

	marks := g.marksFromGroups(events, [][]int{{2, 0}})

	require.Len(t, marks, 1)
	assert.Equal(t, "e3", marks[0].EventID)
	assert.Equal(t, "e1", marks[0].CanonicalID)
}

func TestBackfill(t *testing.T) {
	repo := &fakeRepository{
		dates: []string{"2025-06-14", "2025-06-15"},
		events: []domain.Event{
			{ID: "e1", Title: "Story A"},
			{ID: "e2", Title: "Story A, reworded"},
		},
	}
	stub := &stubGrouper{
		result: llm.GroupingResult{DuplicateGroups: [][]int{{0, 1}}},
	}

	marked, err := newGrouper(repo, stub).Backfill(context.Background(), 7)
	require.NoError(t, err)

	// The first day consumes the pair; the second day has one canonical
	// event left and is skipped.
	assert.Equal(t, 1, marked)
}
