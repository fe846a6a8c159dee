package audit

import (
	"context"

	"github.com/noah-isme/rci-portal-api/internal/models"
)

// Recorder persists audit entries.
type Recorder interface {
	Record(ctx context.Context, entry Entry) (models.AuditLog, error)
}

// OutcomeStatus classifies what happened to a call passing through the auditor.
type OutcomeStatus string

// Outcome statuses.
const (
	OutcomeRecorded OutcomeStatus = "recorded"
	OutcomeSkipped  OutcomeStatus = "skipped"
	OutcomeFailed   OutcomeStatus = "failed"
)

// Skip reasons.
const (
	SkipUnauthenticated = "unauthenticated"
	SkipStatus          = "non_success_status"
	SkipHandlerError    = "handler_error"
)

// Outcome is the best-effort result of auditing one call. A failed outcome
// carries the persistence error; it is reported but never returned to the client.
type Outcome struct {
	Status OutcomeStatus
	Reason string
	Entry  Entry
	Log    *models.AuditLog
	Err    error
}

// Skipped builds an outcome for calls that did not qualify.
func Skipped(reason string) Outcome {
	return Outcome{Status: OutcomeSkipped, Reason: reason}
}

// Persist hands entry to recorder and reports the outcome. Errors are
// captured in the outcome, never returned.
func Persist(ctx context.Context, recorder Recorder, entry Entry) Outcome {
	if recorder == nil {
		return Outcome{Status: OutcomeSkipped, Reason: "no_recorder", Entry: entry}
	}
	log, err := recorder.Record(ctx, entry)
	if err != nil {
		return Outcome{Status: OutcomeFailed, Entry: entry, Err: err}
	}
	return Outcome{Status: OutcomeRecorded, Entry: entry, Log: &log}
}
