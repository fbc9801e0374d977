package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/aipulse/pulse/internal/core/domain"
	cerr "github.com/aipulse/pulse/internal/core/errors"
)

// InsertRun records the start of a workflow execution. Same-day starts of
// one workflow are serialized with a transaction-scoped advisory lock on
// (workflow_name, run_date), so the prior count read under READ COMMITTED
// cannot miss a concurrent start and two simultaneous runs still receive
// distinct counts.
func (db *DB) InsertRun(ctx context.Context, workflowName, runDate string, startedAt time.Time) (domain.WorkflowRun, error) {
	run := domain.WorkflowRun{
		WorkflowName: workflowName,
		RunDate:      runDate,
		StartedAt:    startedAt,
		Status:       domain.RunStarted,
	}

	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			"SELECT pg_advisory_xact_lock(hashtext($1 || '@' || $2))",
			workflowName, runDate,
		); err != nil {
			return fmt.Errorf("lock workflow day: %w", err)
		}

		row := tx.QueryRow(ctx, `
			WITH prior AS (
				SELECT COUNT(*) AS c
				FROM workflow_runs
				WHERE workflow_name = $1 AND run_date = $2::date
			)
			INSERT INTO workflow_runs (
				workflow_name, run_date, started_at, status,
				run_count_today, is_duplicate_run
			)
			SELECT $1, $2::date, $3, $4, prior.c + 1, prior.c > 0
			FROM prior
			RETURNING id, run_count_today, is_duplicate_run
		`, workflowName, runDate, toTimestamptz(startedAt), string(domain.RunStarted))

		return row.Scan(&run.ID, &run.RunCountToday, &run.IsDuplicateRun)
	})
	if err != nil {
		return domain.WorkflowRun{}, fmt.Errorf("insert workflow run: %w", err)
	}

	return run, nil
}

// FinishRun marks a run completed or failed.
func (db *DB) FinishRun(ctx context.Context, runID int64, status domain.RunStatus, completedAt time.Time, notes string) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE workflow_runs
		SET status = $2, completed_at = $3, notes = $4
		WHERE id = $1
	`, runID, string(status), toTimestamptz(completedAt), toText(notes))
	if err != nil {
		return fmt.Errorf("finish workflow run: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", cerr.ErrRunNotFound, runID)
	}

	return nil
}

// GetRun returns a single workflow run by id.
func (db *DB) GetRun(ctx context.Context, runID int64) (domain.WorkflowRun, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, workflow_name, run_date, started_at, completed_at, status,
		       run_count_today, is_duplicate_run, notes
		FROM workflow_runs
		WHERE id = $1
	`, runID)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.WorkflowRun{}, fmt.Errorf("%w: id %d", cerr.ErrRunNotFound, runID)
		}

		return domain.WorkflowRun{}, fmt.Errorf("get workflow run: %w", err)
	}

	return run, nil
}

// ListRuns returns a workflow's runs for a date, oldest first.
func (db *DB) ListRuns(ctx context.Context, workflowName, runDate string) ([]domain.WorkflowRun, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, workflow_name, run_date, started_at, completed_at, status,
		       run_count_today, is_duplicate_run, notes
		FROM workflow_runs
		WHERE workflow_name = $1 AND run_date = $2::date
		ORDER BY id
	`, workflowName, runDate)
	if err != nil {
		return nil, fmt.Errorf("query workflow runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.WorkflowRun

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workflow run: %w", err)
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflow runs: %w", err)
	}

	return runs, nil
}

func scanRun(row pgx.Row) (domain.WorkflowRun, error) {
	var (
		run         domain.WorkflowRun
		runDate     pgtype.Date
		startedAt   pgtype.Timestamptz
		completedAt pgtype.Timestamptz
		status      string
		notes       pgtype.Text
	)

	if err := row.Scan(
		&run.ID, &run.WorkflowName, &runDate, &startedAt, &completedAt, &status,
		&run.RunCountToday, &run.IsDuplicateRun, &notes,
	); err != nil {
		return domain.WorkflowRun{}, err
	}

	run.RunDate = fromDate(runDate)
	run.StartedAt = fromTimestamptz(startedAt)
	run.Status = domain.RunStatus(status)
	run.Notes = fromText(notes)

	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}

	return run, nil
}
