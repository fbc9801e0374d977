package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/aipulse/pulse/internal/core/domain"
)

// SaveStats reports the outcome of persisting one collected batch.
type SaveStats struct {
	Saved      int
	Collisions int
}

const eventColumns = `
	id, seq, source, source_native_id, source_url, title, body, summary,
	entities, published_at, collected_at, duplicate_kind, duplicate_of,
	significance_score, sentiment, analysis`

// SaveEvents persists a collected batch. Events whose (source, native id)
// identity already exists are rejected by the partial unique index and
// counted as collisions; they are never persisted twice. Events without a
// native id always pass this layer.
func (db *DB) SaveEvents(ctx context.Context, events []domain.Event) (SaveStats, error) {
	var stats SaveStats

	for i := range events {
		ev := &events[i]
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}

		entities := ev.Entities
		if entities == nil {
			entities = []string{}
		}

		tag, err := db.Pool.Exec(ctx, `
			INSERT INTO events (
				id, source, source_native_id, source_url, title, body, summary,
				entities, published_at, collected_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (source, source_native_id) WHERE source_native_id IS NOT NULL
			DO NOTHING
		`,
			toUUID(ev.ID),
			string(ev.Source),
			toText(ev.SourceNativeID),
			ev.SourceURL,
			sanitizeUTF8(ev.Title),
			toText(ev.Body),
			toText(ev.Summary),
			entities,
			toTimestamptz(ev.PublishedAt),
			toTimestamptz(ev.CollectedAt),
		)
		if err != nil {
			return stats, fmt.Errorf("save event: %w", err)
		}

		if tag.RowsAffected() == 0 {
			stats.Collisions++
			continue
		}

		stats.Saved++
	}

	return stats, nil
}

// ListEventsForDay returns all events in a day bucket, duplicates included,
// ordered by (collected_at, seq) so the earliest-collected item is first.
func (db *DB) ListEventsForDay(ctx context.Context, date string) ([]domain.Event, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE (COALESCE(published_at, collected_at) AT TIME ZONE 'UTC')::date = $1::date
		ORDER BY collected_at, seq
	`, date)
	if err != nil {
		return nil, fmt.Errorf("query events for day: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListCanonicalForDay returns the day's events not marked duplicate by any
// layer, in the same deterministic order.
func (db *DB) ListCanonicalForDay(ctx context.Context, date string) ([]domain.Event, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE (COALESCE(published_at, collected_at) AT TIME ZONE 'UTC')::date = $1::date
		  AND duplicate_kind IS NULL
		ORDER BY collected_at, seq
	`, date)
	if err != nil {
		return nil, fmt.Errorf("query canonical events for day: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListCanonicalEvents returns canonical events in a date range, the read
// surface consumed by scoring and publishing.
func (db *DB) ListCanonicalEvents(ctx context.Context, startDate, endDate string) ([]domain.Event, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE (COALESCE(published_at, collected_at) AT TIME ZONE 'UTC')::date BETWEEN $1::date AND $2::date
		  AND duplicate_kind IS NULL
		ORDER BY collected_at, seq
	`, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("query canonical events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListUnscoredCanonical returns canonical events awaiting analysis.
// Duplicates are excluded here so they can never transition to scored.
func (db *DB) ListUnscoredCanonical(ctx context.Context, limit int) ([]domain.Event, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE duplicate_kind IS NULL
		  AND significance_score IS NULL
		ORDER BY collected_at, seq
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unscored canonical events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// MarkDuplicates applies matcher output. Rows are never deleted; only the
// duplicate tag is set.
func (db *DB) MarkDuplicates(ctx context.Context, marks []domain.DuplicateMark) error {
	if len(marks) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, m := range marks {
		batch.Queue(`
			UPDATE events
			SET duplicate_kind = $2, duplicate_of = $3
			WHERE id = $1 AND duplicate_kind IS NULL
		`, toUUID(m.EventID), string(m.Kind), toUUID(m.CanonicalID))
	}

	results := db.Pool.SendBatch(ctx, batch)
	defer func() {
		_ = results.Close()
	}()

	for range marks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("mark duplicate: %w", err)
		}
	}

	return nil
}

// SaveAnalysis records the analyzer's verdict for a canonical event.
func (db *DB) SaveAnalysis(ctx context.Context, eventID string, score float32, sentiment, analysis string) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE events
		SET significance_score = $2, sentiment = $3, analysis = $4
		WHERE id = $1
	`, toUUID(eventID), score, toText(sentiment), toText(analysis))
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}

	return nil
}

// GetSentimentSummary counts scored canonical events for a date by
// sentiment. This is the aggregate the daily prediction is derived from.
func (db *DB) GetSentimentSummary(ctx context.Context, date string) (domain.SentimentSummary, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT sentiment, COUNT(*)::int
		FROM events
		WHERE (COALESCE(published_at, collected_at) AT TIME ZONE 'UTC')::date = $1::date
		  AND sentiment IS NOT NULL
		  AND duplicate_kind IS NULL
		GROUP BY sentiment
	`, date)
	if err != nil {
		return domain.SentimentSummary{}, fmt.Errorf("query sentiment summary: %w", err)
	}
	defer rows.Close()

	var summary domain.SentimentSummary

	for rows.Next() {
		var (
			sentiment string
			count     int
		)

		if err := rows.Scan(&sentiment, &count); err != nil {
			return domain.SentimentSummary{}, fmt.Errorf("scan sentiment row: %w", err)
		}

		switch sentiment {
		case domain.SentimentPositive:
			summary.Positive = count
		case domain.SentimentNegative:
			summary.Negative = count
		case domain.SentimentNeutral:
			summary.Neutral = count
		case domain.SentimentMixed:
			summary.Mixed = count
		}

		summary.Total += count
	}

	if err := rows.Err(); err != nil {
		return domain.SentimentSummary{}, fmt.Errorf("iterate sentiment rows: %w", err)
	}

	return summary, nil
}

// EventDates returns the distinct day buckets seen in the last daysBack
// days, oldest first. Used by the retroactive dedup passes.
func (db *DB) EventDates(ctx context.Context, daysBack int) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT DISTINCT (COALESCE(published_at, collected_at) AT TIME ZONE 'UTC')::date AS day
		FROM events
		WHERE collected_at >= NOW() - ($1::int * INTERVAL '1 day')
		ORDER BY day
	`, daysBack)
	if err != nil {
		return nil, fmt.Errorf("query event dates: %w", err)
	}
	defer rows.Close()

	var dates []string

	for rows.Next() {
		var day pgtype.Date
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("scan event date: %w", err)
		}

		dates = append(dates, fromDate(day))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event dates: %w", err)
	}

	return dates, nil
}

func scanEvents(rows pgx.Rows) ([]domain.Event, error) {
	var events []domain.Event

	for rows.Next() {
		var (
			ev            domain.Event
			id            pgtype.UUID
			nativeID      pgtype.Text
			body          pgtype.Text
			summary       pgtype.Text
			publishedAt   pgtype.Timestamptz
			collectedAt   pgtype.Timestamptz
			duplicateKind pgtype.Text
			duplicateOf   pgtype.UUID
			score         pgtype.Float4
			sentiment     pgtype.Text
			analysis      pgtype.Text
			source        string
		)

		if err := rows.Scan(
			&id, &ev.Seq, &source, &nativeID, &ev.SourceURL, &ev.Title, &body, &summary,
			&ev.Entities, &publishedAt, &collectedAt, &duplicateKind, &duplicateOf,
			&score, &sentiment, &analysis,
		); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}

		ev.ID = fromUUID(id)
		ev.Source = domain.Source(source)
		ev.SourceNativeID = fromText(nativeID)
		ev.Body = fromText(body)
		ev.Summary = fromText(summary)
		ev.PublishedAt = fromTimestamptz(publishedAt)
		ev.CollectedAt = fromTimestamptz(collectedAt)
		ev.SignificanceScore = fromFloat4Ptr(score)
		ev.Sentiment = fromText(sentiment)
		ev.Analysis = fromText(analysis)

		if duplicateKind.Valid {
			ev.DuplicateOf = &domain.DuplicateOf{
				Kind:        domain.DuplicateKind(duplicateKind.String),
				CanonicalID: fromUUID(duplicateOf),
			}
		}

		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}

	return events, nil
}
