package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/aipulse/pulse/internal/core/domain"
	cerr "github.com/aipulse/pulse/internal/core/errors"
)

// Postgres error codes that indicate a racing writer.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
)

// SavePrediction applies one ledger write attempt atomically: it locks the
// date's row, runs the state machine, writes the record when permitted, and
// appends exactly one audit entry either way. A racing writer surfaces as
// ErrWriteConflict so the caller can retry with fresh state.
func (db *DB) SavePrediction(
	ctx context.Context,
	date string,
	in domain.PredictionInput,
	shouldLock bool,
	now time.Time,
	workflowRunID *int64,
) (domain.WriteResult, error) {
	var result domain.WriteResult

	err := pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		existing, err := getPredictionForUpdate(ctx, tx, date)
		if err != nil {
			return err
		}

		decision := domain.DecidePredictionWrite(date, existing, shouldLock, now)

		switch decision.Status {
		case domain.WriteInserted:
			// Plain insert: two writers racing the absent row both decide
			// INSERT (FOR UPDATE on a missing row does not block), and the
			// loser must surface the unique violation as a write conflict
			// so the retry re-reads state instead of overwriting.
			if err := insertPrediction(ctx, tx, date, in, decision, now); err != nil {
				return err
			}
		case domain.WriteUpdated:
			if err := updatePrediction(ctx, tx, date, in, decision, now); err != nil {
				return err
			}
		case domain.WriteBlocked:
		}

		if err := appendAudit(ctx, tx, date, in, decision, now, workflowRunID); err != nil {
			return err
		}

		result = domain.WriteResult{
			Status:        decision.Status,
			Action:        decision.Action,
			Reason:        decision.Reason,
			Locked:        decision.Lock,
			FirstLoggedAt: decision.FirstLoggedAt,
			Existing:      existing,
		}

		return nil
	})
	if err != nil {
		return domain.WriteResult{}, classifyWriteError(err)
	}

	return result, nil
}

// GetPrediction returns the ledger record for a date, or nil when absent.
func (db *DB) GetPrediction(ctx context.Context, date string) (*domain.Prediction, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT date, sentiment_positive, sentiment_negative, sentiment_neutral,
		       sentiment_mixed, total_events, prediction, confidence,
		       top_events_summary, created_at, first_logged_at, is_locked
		FROM predictions
		WHERE date = $1::date
	`, date)

	p, err := scanPrediction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("get prediction: %w", err)
	}

	return p, nil
}

// ListAuditEntries returns every write attempt recorded for a date, oldest
// first.
func (db *DB) ListAuditEntries(ctx context.Context, date string) ([]domain.AuditEntry, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, date, sentiment_positive, sentiment_negative, sentiment_neutral,
		       sentiment_mixed, total_events, prediction, confidence,
		       action, reason, created_at, workflow_run_id
		FROM prediction_audit
		WHERE date = $1::date
		ORDER BY id
	`, date)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry

	for rows.Next() {
		var (
			e         domain.AuditEntry
			d         pgtype.Date
			pred      pgtype.Text
			conf      pgtype.Text
			reason    pgtype.Text
			createdAt pgtype.Timestamptz
			runID     pgtype.Int8
		)

		if err := rows.Scan(
			&e.ID, &d, &e.SentimentPositive, &e.SentimentNegative, &e.SentimentNeutral,
			&e.SentimentMixed, &e.TotalEvents, &pred, &conf,
			&e.Action, &reason, &createdAt, &runID,
		); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}

		e.Date = fromDate(d)
		e.Prediction = domain.PredictionLabel(fromText(pred))
		e.Confidence = domain.Confidence(fromText(conf))
		e.Reason = fromText(reason)
		e.CreatedAt = fromTimestamptz(createdAt)

		if runID.Valid {
			id := runID.Int64
			e.WorkflowRunID = &id
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit rows: %w", err)
	}

	return entries, nil
}

func getPredictionForUpdate(ctx context.Context, tx pgx.Tx, date string) (*domain.Prediction, error) {
	row := tx.QueryRow(ctx, `
		SELECT date, sentiment_positive, sentiment_negative, sentiment_neutral,
		       sentiment_mixed, total_events, prediction, confidence,
		       top_events_summary, created_at, first_logged_at, is_locked
		FROM predictions
		WHERE date = $1::date
		FOR UPDATE
	`, date)

	p, err := scanPrediction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("lock prediction row: %w", err)
	}

	return p, nil
}

func insertPrediction(ctx context.Context, tx pgx.Tx, date string, in domain.PredictionInput, decision domain.WriteDecision, now time.Time) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO predictions (
			date, sentiment_positive, sentiment_negative, sentiment_neutral,
			sentiment_mixed, total_events, prediction, confidence,
			top_events_summary, created_at, first_logged_at, is_locked
		) VALUES ($1::date, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		date,
		in.SentimentPositive,
		in.SentimentNegative,
		in.SentimentNeutral,
		in.SentimentMixed,
		in.TotalEvents,
		string(in.Prediction),
		string(in.Confidence),
		toText(in.TopEventsSummary),
		toTimestamptz(now),
		toTimestamptz(decision.FirstLoggedAt),
		decision.Lock,
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}

	return nil
}

func updatePrediction(ctx context.Context, tx pgx.Tx, date string, in domain.PredictionInput, decision domain.WriteDecision, now time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE predictions SET
			sentiment_positive = $2,
			sentiment_negative = $3,
			sentiment_neutral = $4,
			sentiment_mixed = $5,
			total_events = $6,
			prediction = $7,
			confidence = $8,
			top_events_summary = $9,
			created_at = $10,
			is_locked = $11
		WHERE date = $1::date
	`,
		date,
		in.SentimentPositive,
		in.SentimentNegative,
		in.SentimentNeutral,
		in.SentimentMixed,
		in.TotalEvents,
		string(in.Prediction),
		string(in.Confidence),
		toText(in.TopEventsSummary),
		toTimestamptz(now),
		decision.Lock,
	)
	if err != nil {
		return fmt.Errorf("update prediction: %w", err)
	}

	return nil
}

func appendAudit(ctx context.Context, tx pgx.Tx, date string, in domain.PredictionInput, decision domain.WriteDecision, now time.Time, workflowRunID *int64) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO prediction_audit (
			date, sentiment_positive, sentiment_negative, sentiment_neutral,
			sentiment_mixed, total_events, prediction, confidence,
			action, reason, created_at, workflow_run_id
		) VALUES ($1::date, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		date,
		in.SentimentPositive,
		in.SentimentNegative,
		in.SentimentNeutral,
		in.SentimentMixed,
		in.TotalEvents,
		string(in.Prediction),
		string(in.Confidence),
		string(decision.Action),
		toText(decision.Reason),
		toTimestamptz(now),
		toInt8Ptr(workflowRunID),
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	return nil
}

func scanPrediction(row pgx.Row) (*domain.Prediction, error) {
	var (
		p             domain.Prediction
		d             pgtype.Date
		pred          string
		conf          string
		summary       pgtype.Text
		createdAt     pgtype.Timestamptz
		firstLoggedAt pgtype.Timestamptz
	)

	if err := row.Scan(
		&d, &p.SentimentPositive, &p.SentimentNegative, &p.SentimentNeutral,
		&p.SentimentMixed, &p.TotalEvents, &pred, &conf,
		&summary, &createdAt, &firstLoggedAt, &p.Locked,
	); err != nil {
		return nil, err
	}

	p.Date = fromDate(d)
	p.Prediction = domain.PredictionLabel(pred)
	p.Confidence = domain.Confidence(conf)
	p.TopEventsSummary = fromText(summary)
	p.CreatedAt = fromTimestamptz(createdAt)
	p.FirstLoggedAt = fromTimestamptz(firstLoggedAt)

	return &p, nil
}

func classifyWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgUniqueViolation:
			return fmt.Errorf("%w: %s", cerr.ErrWriteConflict, pgErr.Code)
		}
	}

	return err
}
