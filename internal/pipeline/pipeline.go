// Package pipeline orchestrates one collection cycle: connectors fetch,
// same-batch URLs collapse, the identity layer filters, and the lexical
// matcher runs over every touched day bucket.
package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aipulse/pulse/internal/core/domain"
	"github.com/aipulse/pulse/internal/ingest/sources"
	"github.com/aipulse/pulse/internal/platform/observability"
	db "github.com/aipulse/pulse/internal/storage"
)

type Repository interface {
	SaveEvents(ctx context.Context, events []domain.Event) (db.SaveStats, error)
}

// DayMatcher is the lexical layer run per touched day bucket.
type DayMatcher interface {
	Run(ctx context.Context, date string) (int, error)
}

type Pipeline struct {
	connectors []sources.Connector
	database   Repository
	matcher    DayMatcher
	logger     *zerolog.Logger
}

func New(connectors []sources.Connector, database Repository, matcher DayMatcher, logger *zerolog.Logger) *Pipeline {
	return &Pipeline{
		connectors: connectors,
		database:   database,
		matcher:    matcher,
		logger:     logger,
	}
}

// Collect runs one cycle over all connectors. A failing connector is
// logged and skipped; the cycle continues with the rest.
func (p *Pipeline) Collect(ctx context.Context) error {
	collapser := sources.NewURLCollapser()
	touched := make(map[string]bool)

	for _, connector := range p.connectors {
		source := string(connector.Name())

		events, err := connector.Collect(ctx)
		if err != nil {
			p.logger.Error().Err(err).Str("source", source).Msg("Connector failed, skipping")
			continue
		}

		observability.EventsCollected.WithLabelValues(source).Add(float64(len(events)))

		events, dropped := collapser.Collapse(events)
		if dropped > 0 {
			observability.URLCollapsed.Add(float64(dropped))
		}

		stats, err := p.database.SaveEvents(ctx, events)
		if err != nil {
			return fmt.Errorf("save events from %s: %w", source, err)
		}

		if stats.Collisions > 0 {
			observability.IdentityCollisions.WithLabelValues(source).Add(float64(stats.Collisions))
		}

		p.logger.Info().
			Str("source", source).
			Int("collected", len(events)).
			Int("saved", stats.Saved).
			Int("collisions", stats.Collisions).
			Int("url_collapsed", dropped).
			Msg("Connector cycle complete")

		for i := range events {
			touched[events[i].DayBucket()] = true
		}
	}

	return p.matchTouchedDays(ctx, touched)
}

func (p *Pipeline) matchTouchedDays(ctx context.Context, touched map[string]bool) error {
	dates := make([]string, 0, len(touched))
	for date := range touched {
		dates = append(dates, date)
	}

	sort.Strings(dates)

	for _, date := range dates {
		if _, err := p.matcher.Run(ctx, date); err != nil {
			return fmt.Errorf("lexical match %s: %w", date, err)
		}
	}

	return nil
}
