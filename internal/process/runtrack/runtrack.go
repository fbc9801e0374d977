// Package runtrack records workflow executions and flags same-day repeats,
// the run-level diagnostic for double-fired schedules.
package runtrack

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aipulse/pulse/internal/core/domain"
	"github.com/aipulse/pulse/internal/platform/clock"
	"github.com/aipulse/pulse/internal/platform/markethours"
	"github.com/aipulse/pulse/internal/platform/observability"
)

type Repository interface {
	InsertRun(ctx context.Context, workflowName, runDate string, startedAt time.Time) (domain.WorkflowRun, error)
	FinishRun(ctx context.Context, runID int64, status domain.RunStatus, completedAt time.Time, notes string) error
}

// Tracker wraps workflow cycles in start/finish records.
type Tracker struct {
	database Repository
	clock    clock.Clock
	boundary markethours.Boundary
	logger   *zerolog.Logger
}

func New(database Repository, clk clock.Clock, boundary markethours.Boundary, logger *zerolog.Logger) *Tracker {
	return &Tracker{
		database: database,
		clock:    clk,
		boundary: boundary,
		logger:   logger,
	}
}

// Start records the beginning of a workflow cycle. A duplicate run is
// recorded and flagged, never refused; downstream stages decide what a
// repeat means for them.
func (t *Tracker) Start(ctx context.Context, workflowName string) (domain.WorkflowRun, error) {
	now := t.clock.Now()
	runDate := t.boundary.Today(now)

	run, err := t.database.InsertRun(ctx, workflowName, runDate, now)
	if err != nil {
		return domain.WorkflowRun{}, fmt.Errorf("insert workflow run: %w", err)
	}

	if run.IsDuplicateRun {
		observability.DuplicateRuns.WithLabelValues(workflowName).Inc()
		t.logger.Warn().
			Str("workflow", workflowName).
			Str("run_date", runDate).
			Int("run_count_today", run.RunCountToday).
			Msg("Workflow already ran today")
	} else {
		t.logger.Info().
			Str("workflow", workflowName).
			Str("run_date", runDate).
			Msg("Workflow run started")
	}

	return run, nil
}

// Complete marks the run finished with the given outcome.
func (t *Tracker) Complete(ctx context.Context, run domain.WorkflowRun, runErr error) error {
	status := domain.RunCompleted
	notes := ""

	if runErr != nil {
		status = domain.RunFailed
		notes = runErr.Error()
	}

	if err := t.database.FinishRun(ctx, run.ID, status, t.clock.Now(), notes); err != nil {
		return fmt.Errorf("finish workflow run: %w", err)
	}

	return nil
}
