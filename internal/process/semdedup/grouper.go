// Package semdedup implements the semantic duplicate layer: same-day
// canonical titles are sent to the language model, which groups headlines
// describing the same story regardless of wording.
package semdedup

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aipulse/pulse/internal/core/domain"
	"github.com/aipulse/pulse/internal/core/llm"
	"github.com/aipulse/pulse/internal/platform/observability"
)

type TitleGrouper interface {
	GroupTitles(ctx context.Context, titles []string) (llm.GroupingResult, error)
}

type Repository interface {
	ListCanonicalForDay(ctx context.Context, date string) ([]domain.Event, error)
	MarkDuplicates(ctx context.Context, marks []domain.DuplicateMark) error
	EventDates(ctx context.Context, daysBack int) ([]string, error)
}

// Grouper runs the semantic layer over a day bucket. Model failures never
// fail the pipeline; the day simply keeps its current duplicate state.
type Grouper struct {
	database Repository
	grouper  TitleGrouper
	timeout  time.Duration
	logger   *zerolog.Logger
}

func New(database Repository, grouper TitleGrouper, timeout time.Duration, logger *zerolog.Logger) *Grouper {
	return &Grouper{
		database: database,
		grouper:  grouper,
		timeout:  timeout,
		logger:   logger,
	}
}

// Run groups one day bucket and persists the resulting marks. Returns the
// number of events newly marked duplicate.
func (g *Grouper) Run(ctx context.Context, date string) (int, error) {
	events, err := g.database.ListCanonicalForDay(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("list canonical events: %w", err)
	}

	if len(events) < 2 {
		return 0, nil
	}

	titles := make([]string, len(events))
	for i := range events {
		titles[i] = events[i].Title
	}

	groupCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := g.grouper.GroupTitles(groupCtx, titles)
	if err != nil {
		observability.GroupingFailures.Inc()
		g.logger.Warn().Err(err).Str("date", date).Msg("Semantic grouping failed, keeping current duplicate state")

		return 0, nil
	}

	marks := g.marksFromGroups(events, result.DuplicateGroups)
	if len(marks) == 0 {
		return 0, nil
	}

	if err := g.database.MarkDuplicates(ctx, marks); err != nil {
		return 0, fmt.Errorf("mark duplicates: %w", err)
	}

	observability.DuplicatesMarked.WithLabelValues(string(domain.DuplicateSemantic)).Add(float64(len(marks)))
	g.logger.Info().
		Str("date", date).
		Int("marked", len(marks)).
		Str("reasoning", result.Reasoning).
		Msg("Semantic grouping complete")

	return len(marks), nil
}

// Backfill reruns the grouper over every day bucket seen in the window.
func (g *Grouper) Backfill(ctx context.Context, daysBack int) (int, error) {
	dates, err := g.database.EventDates(ctx, daysBack)
	if err != nil {
		return 0, fmt.Errorf("list event dates: %w", err)
	}

	total := 0

	for _, date := range dates {
		marked, err := g.Run(ctx, date)
		if err != nil {
			return total, fmt.Errorf("group day %s: %w", date, err)
		}

		total += marked
	}

	return total, nil
}

// marksFromGroups validates the model output and converts each surviving
// group into duplicate marks. Invalid groups are dropped individually:
// indices out of range, indices already claimed by an earlier group, and
// groups that shrink below two members.
func (g *Grouper) marksFromGroups(events []domain.Event, groups [][]int) []domain.DuplicateMark {
	var marks []domain.DuplicateMark

	claimed := make(map[int]bool)

	for _, group := range groups {
		valid := make([]int, 0, len(group))

		for _, idx := range group {
			if idx < 0 || idx >= len(events) {
				g.logger.Warn().Int("index", idx).Msg("Grouping index out of range, dropping")
				continue
			}

			if claimed[idx] {
				g.logger.Warn().Int("index", idx).Msg("Grouping index claimed twice, dropping")
				continue
			}

			valid = append(valid, idx)
		}

		if len(valid) < 2 {
			continue
		}

		// The earliest-collected member stays canonical.
		sort.Ints(valid)

		canonical := events[valid[0]]

		for _, idx := range valid {
			claimed[idx] = true
		}

		for _, idx := range valid[1:] {
			marks = append(marks, domain.DuplicateMark{
				EventID:     events[idx].ID,
				Kind:        domain.DuplicateSemantic,
				CanonicalID: canonical.ID,
			})
		}
	}

	return marks
}
