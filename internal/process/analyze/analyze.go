// Package analyze scores canonical events with the language model:
// significance, sentiment, and a short analysis per event.
package analyze

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aipulse/pulse/internal/core/domain"
	"github.com/aipulse/pulse/internal/core/llm"
	"github.com/aipulse/pulse/internal/platform/observability"
)

type Repository interface {
	ListUnscoredCanonical(ctx context.Context, limit int) ([]domain.Event, error)
	SaveAnalysis(ctx context.Context, eventID string, score float32, sentiment, analysis string) error
}

type Scorer interface {
	ScoreEvent(ctx context.Context, title, summary string) (llm.ScoreResult, error)
}

// Analyzer scores unscored canonical events in batches. A failed score
// leaves the event unscored for the next cycle; one bad event never stops
// the batch.
type Analyzer struct {
	database  Repository
	scorer    Scorer
	batchSize int
	logger    *zerolog.Logger
}

func New(database Repository, scorer Scorer, batchSize int, logger *zerolog.Logger) *Analyzer {
	return &Analyzer{
		database:  database,
		scorer:    scorer,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run scores one batch and returns the number of events scored.
func (a *Analyzer) Run(ctx context.Context) (int, error) {
	events, err := a.database.ListUnscoredCanonical(ctx, a.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list unscored events: %w", err)
	}

	scored := 0

	for _, ev := range events {
		result, err := a.scorer.ScoreEvent(ctx, ev.Title, ev.Summary)
		if err != nil {
			a.logger.Warn().Err(err).Str("event_id", ev.ID).Msg("Scoring failed, leaving event for next cycle")
			continue
		}

		if err := a.database.SaveAnalysis(ctx, ev.ID, clampScore(result.Significance), normalizeSentiment(result.Sentiment), result.Analysis); err != nil {
			return scored, fmt.Errorf("save analysis: %w", err)
		}

		observability.EventsScored.Inc()

		scored++
	}

	if scored > 0 {
		a.logger.Info().Int("scored", scored).Msg("Analysis batch complete")
	}

	return scored, nil
}

// TopEventsSummary renders the most significant scored events as one line
// per event, for the prediction record.
func TopEventsSummary(events []domain.Event, limit int) string {
	scored := make([]domain.Event, 0, len(events))

	for _, ev := range events {
		if ev.SignificanceScore != nil {
			scored = append(scored, ev)
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return *scored[i].SignificanceScore > *scored[j].SignificanceScore
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	lines := make([]string, 0, len(scored))

	for _, ev := range scored {
		lines = append(lines, fmt.Sprintf("[%.1f/%s] %s", *ev.SignificanceScore, ev.Sentiment, ev.Title))
	}

	return strings.Join(lines, "\n")
}

func clampScore(score float32) float32 {
	if score < 0 {
		return 0
	}

	if score > 10 {
		return 10
	}

	return score
}

func normalizeSentiment(sentiment string) string {
	switch sentiment {
	case domain.SentimentPositive, domain.SentimentNegative, domain.SentimentNeutral, domain.SentimentMixed:
		return sentiment
	default:
		return domain.SentimentNeutral
	}
}
