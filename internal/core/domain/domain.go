// Package domain defines the core entities of the pulse engine: collected
// events, their duplicate state, the daily prediction ledger, its audit
// trail, and workflow run records.
package domain

import "time"

// DateLayout is the calendar-date format used for day buckets, prediction
// keys, and workflow run dates.
const DateLayout = "2006-01-02"

// Source identifies the connector family an event was collected from.
type Source string

const (
	SourceNewsAPI    Source = "newsapi"
	SourceHackerNews Source = "hackernews"
	SourceSECEdgar   Source = "sec_edgar"
	SourceGitHub     Source = "github"
	SourceTechRSS    Source = "tech_rss"
	SourceArxiv      Source = "arxiv"
	SourceUnknown    Source = "unknown"
)

// DuplicateKind tags which matching layer marked an event as duplicate.
type DuplicateKind string

const (
	DuplicateLexical  DuplicateKind = "lexical"
	DuplicateSemantic DuplicateKind = "semantic"
)

// DuplicateOf records that an event duplicates an earlier canonical event.
// A nil pointer on Event means the event is canonical.
type DuplicateOf struct {
	Kind        DuplicateKind
	CanonicalID string
}

// DuplicateMark is a pending duplicate assignment produced by a matcher.
type DuplicateMark struct {
	EventID     string
	Kind        DuplicateKind
	CanonicalID string
}

// Sentiment labels assigned by the analyzer.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
	SentimentMixed    = "mixed"
)

// Event is a collected news item. Created once per collection run; after
// persistence only the duplicate state and analysis fields may change.
type Event struct {
	ID             string
	Seq            int64
	Source         Source
	SourceNativeID string
	SourceURL      string
	Title          string
	Body           string
	Summary        string
	Entities       []string
	PublishedAt    time.Time
	CollectedAt    time.Time

	DuplicateOf *DuplicateOf

	SignificanceScore *float32
	Sentiment         string
	Analysis          string
}

// IsCanonical reports whether no matching layer has marked the event as a
// duplicate.
func (e *Event) IsCanonical() bool {
	return e.DuplicateOf == nil
}

// DayBucket returns the calendar date used for same-day comparisons,
// preferring the publication time over the collection time.
func (e *Event) DayBucket() string {
	if !e.PublishedAt.IsZero() {
		return e.PublishedAt.UTC().Format(DateLayout)
	}

	return e.CollectedAt.UTC().Format(DateLayout)
}

// PredictionLabel is the daily forecast direction.
type PredictionLabel string

const (
	PredictionBullish PredictionLabel = "bullish"
	PredictionBearish PredictionLabel = "bearish"
	PredictionNeutral PredictionLabel = "neutral"
)

// Confidence grades how much event volume backs a prediction.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Prediction is the single daily ledger record, keyed by date.
type Prediction struct {
	Date              string
	SentimentPositive float32
	SentimentNegative float32
	SentimentNeutral  float32
	SentimentMixed    float32
	TotalEvents       int
	Prediction        PredictionLabel
	Confidence        Confidence
	TopEventsSummary  string
	CreatedAt         time.Time
	FirstLoggedAt     time.Time
	Locked            bool
}

// AuditAction categorizes a prediction write attempt.
type AuditAction string

const (
	AuditInsert  AuditAction = "INSERT"
	AuditUpdate  AuditAction = "UPDATE"
	AuditBlocked AuditAction = "BLOCKED"
)

// AuditEntry is one append-only row per prediction write attempt,
// successful or not.
type AuditEntry struct {
	ID                int64
	Date              string
	SentimentPositive float32
	SentimentNegative float32
	SentimentNeutral  float32
	SentimentMixed    float32
	TotalEvents       int
	Prediction        PredictionLabel
	Confidence        Confidence
	Action            AuditAction
	Reason            string
	CreatedAt         time.Time
	WorkflowRunID     *int64
}

// RunStatus is the lifecycle state of a workflow run.
type RunStatus string

const (
	RunStarted   RunStatus = "started"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// WorkflowRun records one scheduled-job invocation.
type WorkflowRun struct {
	ID             int64
	WorkflowName   string
	RunDate        string
	StartedAt      time.Time
	CompletedAt    *time.Time
	Status         RunStatus
	RunCountToday  int
	IsDuplicateRun bool
	Notes          string
}

// SentimentSummary is the per-date sentiment breakdown over canonical
// scored events, the input a prediction is derived from.
type SentimentSummary struct {
	Positive int
	Negative int
	Neutral  int
	Mixed    int
	Total    int
}

// Percentages converts the summary counts to percentages of the total.
// All zeros when no events were scored.
func (s SentimentSummary) Percentages() (positive, negative, neutral, mixed float32) {
	if s.Total == 0 {
		return 0, 0, 0, 0
	}

	total := float32(s.Total)

	return float32(s.Positive) / total * 100,
		float32(s.Negative) / total * 100,
		float32(s.Neutral) / total * 100,
		float32(s.Mixed) / total * 100
}
