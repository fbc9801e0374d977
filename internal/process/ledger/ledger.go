// Package ledger writes the daily prediction record through the lock-aware
// state machine and derives the prediction from the day's sentiment counts.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aipulse/pulse/internal/core/domain"
	cerr "github.com/aipulse/pulse/internal/core/errors"
	"github.com/aipulse/pulse/internal/platform/clock"
	"github.com/aipulse/pulse/internal/platform/markethours"
	"github.com/aipulse/pulse/internal/platform/observability"
)

// Prediction thresholds over the day's sentiment counts.
const (
	bullishNetThreshold   = 10
	bearishNetThreshold   = -10
	highVolumeThreshold   = 40
	mediumVolumeThreshold = 20
)

type Repository interface {
	SavePrediction(ctx context.Context, date string, in domain.PredictionInput, shouldLock bool, now time.Time, workflowRunID *int64) (domain.WriteResult, error)
}

// Writer records prediction write attempts. One retry on a write conflict;
// the retry re-reads state inside the transaction, so a concurrent insert
// degrades to an update or a block, never a duplicate.
type Writer struct {
	database Repository
	clock    clock.Clock
	boundary markethours.Boundary
	logger   *zerolog.Logger
}

func NewWriter(database Repository, clk clock.Clock, boundary markethours.Boundary, logger *zerolog.Logger) *Writer {
	return &Writer{
		database: database,
		clock:    clk,
		boundary: boundary,
		logger:   logger,
	}
}

// Record applies one write attempt for a date. A blocked write is a normal
// outcome reported in the result, not an error.
func (w *Writer) Record(ctx context.Context, date string, in domain.PredictionInput, workflowRunID *int64) (domain.WriteResult, error) {
	now := w.clock.Now()

	shouldLock, err := w.boundary.ShouldLock(date, now)
	if err != nil {
		return domain.WriteResult{}, err
	}

	result, err := w.database.SavePrediction(ctx, date, in, shouldLock, now, workflowRunID)
	if errors.Is(err, cerr.ErrWriteConflict) {
		w.logger.Warn().Str("date", date).Msg("Prediction write conflict, retrying once")

		result, err = w.database.SavePrediction(ctx, date, in, shouldLock, now, workflowRunID)
	}

	if err != nil {
		return domain.WriteResult{}, fmt.Errorf("save prediction: %w", err)
	}

	observability.PredictionWrites.WithLabelValues(string(result.Status)).Inc()

	logEvent := w.logger.Info()
	if result.Status == domain.WriteBlocked {
		logEvent = w.logger.Warn()
	}

	logEvent.
		Str("date", date).
		Str("status", string(result.Status)).
		Str("reason", result.Reason).
		Msg("Prediction write recorded")

	return result, nil
}

// DeriveInput converts the day's sentiment summary into the ledger record:
// direction from the positive/negative balance, confidence from volume.
func DeriveInput(summary domain.SentimentSummary, topEventsSummary string) domain.PredictionInput {
	net := summary.Positive - summary.Negative

	label := domain.PredictionNeutral

	switch {
	case net > bullishNetThreshold:
		label = domain.PredictionBullish
	case net < bearishNetThreshold:
		label = domain.PredictionBearish
	}

	confidence := domain.ConfidenceLow

	switch {
	case summary.Total >= highVolumeThreshold:
		confidence = domain.ConfidenceHigh
	case summary.Total >= mediumVolumeThreshold:
		confidence = domain.ConfidenceMedium
	}

	positive, negative, neutral, mixed := summary.Percentages()

	return domain.PredictionInput{
		SentimentPositive: positive,
		SentimentNegative: negative,
		SentimentNeutral:  neutral,
		SentimentMixed:    mixed,
		TotalEvents:       summary.Total,
		Prediction:        label,
		Confidence:        confidence,
		TopEventsSummary:  topEventsSummary,
	}
}
