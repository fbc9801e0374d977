package domain

import (
	"fmt"
	"time"
)

// WriteStatus is the outcome of a prediction write attempt. Blocked is a
// normal result, not an error; callers must check it.
type WriteStatus string

const (
	WriteInserted WriteStatus = "inserted"
	WriteUpdated  WriteStatus = "updated"
	WriteBlocked  WriteStatus = "blocked"
)

// PredictionInput carries the fields a caller wants to write to the ledger.
type PredictionInput struct {
	SentimentPositive float32
	SentimentNegative float32
	SentimentNeutral  float32
	SentimentMixed    float32
	TotalEvents       int
	Prediction        PredictionLabel
	Confidence        Confidence
	TopEventsSummary  string
}

// WriteDecision is the transition the ledger state machine chose for a
// write attempt. Exactly one audit row is emitted per decision.
type WriteDecision struct {
	Status WriteStatus
	Action AuditAction
	Reason string
	// Lock is the is_locked value to store when the write is applied.
	Lock bool
	// FirstLoggedAt is preserved across updates and set once on insert.
	FirstLoggedAt time.Time
}

// WriteResult reports the applied (or refused) transition to the caller.
type WriteResult struct {
	Status        WriteStatus
	Action        AuditAction
	Reason        string
	Locked        bool
	FirstLoggedAt time.Time
	// Existing holds the untouched record when the write was blocked.
	Existing *Prediction
}

// DecidePredictionWrite runs the ABSENT -> UNLOCKED -> LOCKED state machine
// for one write attempt. shouldLock reflects the market-open boundary for
// the record's date at wall-clock now; the stored lock flag on an existing
// record always wins even if the boundary computation disagrees.
func DecidePredictionWrite(date string, existing *Prediction, shouldLock bool, now time.Time) WriteDecision {
	if existing != nil && (existing.Locked || shouldLock) {
		return WriteDecision{
			Status:        WriteBlocked,
			Action:        AuditBlocked,
			Reason:        fmt.Sprintf("prediction for %s is locked (market already opened)", date),
			Lock:          true,
			FirstLoggedAt: existing.FirstLoggedAt,
		}
	}

	if existing == nil {
		reason := "initial prediction logged"
		if shouldLock {
			reason = "initial prediction logged after market open (late first write)"
		}

		return WriteDecision{
			Status:        WriteInserted,
			Action:        AuditInsert,
			Reason:        reason,
			Lock:          shouldLock,
			FirstLoggedAt: now,
		}
	}

	return WriteDecision{
		Status:        WriteUpdated,
		Action:        AuditUpdate,
		Reason:        "prediction updated before market open",
		Lock:          false,
		FirstLoggedAt: existing.FirstLoggedAt,
	}
}
