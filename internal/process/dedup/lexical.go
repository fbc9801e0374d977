// Package dedup implements the lexical duplicate matcher: same-day title
// comparison with Ratcliff-Obershelp similarity and an entity-assisted
// lower threshold.
package dedup

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/aipulse/pulse/internal/core/domain"
	"github.com/aipulse/pulse/internal/platform/observability"
)

const (
	// Titles at or above this similarity are duplicates outright.
	titleThreshold = 0.75
	// Titles at or above this similarity are duplicates when the events
	// also share a watchlist entity.
	entityAssistedThreshold = 0.60
)

type Repository interface {
	ListEventsForDay(ctx context.Context, date string) ([]domain.Event, error)
	MarkDuplicates(ctx context.Context, marks []domain.DuplicateMark) error
	EventDates(ctx context.Context, daysBack int) ([]string, error)
}

// Matcher runs the lexical layer over a day bucket.
type Matcher struct {
	database Repository
	logger   *zerolog.Logger
}

func NewMatcher(database Repository, logger *zerolog.Logger) *Matcher {
	return &Matcher{database: database, logger: logger}
}

// Run matches one day bucket and persists the resulting marks. Returns the
// number of events newly marked duplicate.
func (m *Matcher) Run(ctx context.Context, date string) (int, error) {
	events, err := m.database.ListEventsForDay(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("list events for day: %w", err)
	}

	marks := MatchDay(events)
	if len(marks) == 0 {
		return 0, nil
	}

	if err := m.database.MarkDuplicates(ctx, marks); err != nil {
		return 0, fmt.Errorf("mark duplicates: %w", err)
	}

	observability.DuplicatesMarked.WithLabelValues(string(domain.DuplicateLexical)).Add(float64(len(marks)))
	m.logger.Info().Str("date", date).Int("marked", len(marks)).Msg("Lexical matching complete")

	return len(marks), nil
}

// Backfill reruns the matcher over every day bucket seen in the window.
func (m *Matcher) Backfill(ctx context.Context, daysBack int) (int, error) {
	dates, err := m.database.EventDates(ctx, daysBack)
	if err != nil {
		return 0, fmt.Errorf("list event dates: %w", err)
	}

	total := 0

	for _, date := range dates {
		marked, err := m.Run(ctx, date)
		if err != nil {
			return total, fmt.Errorf("match day %s: %w", date, err)
		}

		total += marked
	}

	return total, nil
}

// MatchDay compares every canonical pair within one day bucket. Events must
// arrive in collection order; the earlier event of a matched pair stays
// canonical. An event marked duplicate in this pass is excluded from
// further comparison, so marks never chain.
func MatchDay(events []domain.Event) []domain.DuplicateMark {
	var marks []domain.DuplicateMark

	marked := make(map[string]bool)
	titles := make([]string, len(events))

	for i := range events {
		titles[i] = NormalizeTitle(events[i].Title)
	}

	for i := range events {
		if !events[i].IsCanonical() || marked[events[i].ID] {
			continue
		}

		for j := i + 1; j < len(events); j++ {
			if !events[j].IsCanonical() || marked[events[j].ID] {
				continue
			}

			sim := Similarity(titles[i], titles[j])
			if sim < entityAssistedThreshold {
				continue
			}

			if sim < titleThreshold && !sharesEntity(events[i].Entities, events[j].Entities) {
				continue
			}

			marked[events[j].ID] = true
			marks = append(marks, domain.DuplicateMark{
				EventID:     events[j].ID,
				Kind:        domain.DuplicateLexical,
				CanonicalID: events[i].ID,
			})
		}
	}

	return marks
}

// NormalizeTitle applies NFKC normalization, lowercasing, and whitespace
// collapsing so comparison ignores cosmetic differences.
func NormalizeTitle(title string) string {
	normalized := norm.NFKC.String(title)
	normalized = strings.ToLower(normalized)

	return strings.Join(strings.Fields(normalized), " ")
}

// Similarity is the Ratcliff-Obershelp ratio over the two titles' runes.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	if a == b {
		return 1
	}

	return difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).Ratio()
}

func sharesEntity(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}

	set := make(map[string]bool, len(a))
	for _, e := range a {
		set[strings.ToLower(e)] = true
	}

	for _, e := range b {
		if set[strings.ToLower(e)] {
			return true
		}
	}

	return false
}
