package reconcile

import (
	"time"

	"github.com/google/uuid"
)

// ReportEntry describes the outcome of one record in a bulk run
type ReportEntry struct {
	ExternalID int64      `json:"external_id"`
	Email      string     `json:"email,omitempty"`
	AccountID  *uuid.UUID `json:"account_id,omitempty"`
	Strategy   Strategy   `json:"strategy,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Message    string     `json:"message,omitempty"`
}

// Report aggregates the outcomes of a bulk reconciliation run. Entries
// within each bucket keep the order in which the records were processed.
type Report struct {
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	Total        int           `json:"total"`
	Linked       []ReportEntry `json:"linked"`
	Skipped      []ReportEntry `json:"skipped"`
	Errors       []ReportEntry `json:"errors"`
	ManualReview []ReportEntry `json:"manual_review"`
}

// NewReport creates an empty report stamped with the start time
func NewReport() *Report {
	return &Report{
		StartedAt:    time.Now(),
		Linked:       make([]ReportEntry, 0),
		Skipped:      make([]ReportEntry, 0),
		Errors:       make([]ReportEntry, 0),
		ManualReview: make([]ReportEntry, 0),
	}
}

// Record files a link result into the matching bucket
func (r *Report) Record(email string, strategy Strategy, result *LinkResult) {
	r.Total++

	entry := ReportEntry{
		ExternalID: result.ExternalID,
		Email:      email,
		Strategy:   strategy,
		Reason:     result.Reason,
		Message:    result.Message,
	}
	if result.AccountID != uuid.Nil {
		accountID := result.AccountID
		entry.AccountID = &accountID
	}

	switch result.Outcome {
	case OutcomeLinked:
		r.Linked = append(r.Linked, entry)
	case OutcomeSkipped:
		r.Skipped = append(r.Skipped, entry)
	default:
		r.Errors = append(r.Errors, entry)
	}
}

// RecordManualReview files a record that could not be matched automatically
func (r *Report) RecordManualReview(externalID int64, email, message string) {
	r.Total++
	r.ManualReview = append(r.ManualReview, ReportEntry{
		ExternalID: externalID,
		Email:      email,
		Message:    message,
	})
}

// Finish stamps the completion time
func (r *Report) Finish() {
	r.FinishedAt = time.Now()
}
