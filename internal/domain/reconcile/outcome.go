package reconcile

import (
	"github.com/google/uuid"
)

// Outcome classifies the result of a single link operation
type Outcome string

const (
	OutcomeLinked  Outcome = "linked"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Reason codes for skipped and failed outcomes. Skips are expected
// conditions (idempotent re-runs, conflicts); failures are things an
// operator may need to look at.
const (
	ReasonAlreadyLinked           = "already_linked"
	ReasonAccountLinkedElsewhere  = "account_linked_elsewhere"
	ReasonExternalLinkedElsewhere = "external_linked_elsewhere"
	ReasonAccountNotFound         = "account_not_found"
	ReasonExternalNotFound        = "external_not_found"
	ReasonRemoteUnavailable       = "remote_unavailable"
	ReasonStorageError            = "storage_error"
)

// LinkResult is the structured outcome of one link operation. Every
// failure mode becomes a typed result; link operations never surface
// raw errors to their callers.
type LinkResult struct {
	Outcome    Outcome   `json:"outcome"`
	ExternalID int64     `json:"external_id"`
	AccountID  uuid.UUID `json:"account_id,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Message    string    `json:"message,omitempty"`

	// RemoteWriteError records a failed best-effort write back to the
	// commerce platform after the local write already succeeded. The
	// overall outcome stays Linked; the divergence is repaired by the
	// next sync pass.
	RemoteWriteError string `json:"remote_write_error,omitempty"`
}

// Linked builds a successful link result
func Linked(externalID int64, accountID uuid.UUID) *LinkResult {
	return &LinkResult{
		Outcome:    OutcomeLinked,
		ExternalID: externalID,
		AccountID:  accountID,
	}
}

// Skipped builds a skipped link result with a reason code
func Skipped(externalID int64, accountID uuid.UUID, reason, message string) *LinkResult {
	return &LinkResult{
		Outcome:    OutcomeSkipped,
		ExternalID: externalID,
		AccountID:  accountID,
		Reason:     reason,
		Message:    message,
	}
}

// Failed builds a failed link result with a reason code
func Failed(externalID int64, accountID uuid.UUID, reason, message string) *LinkResult {
	return &LinkResult{
		Outcome:    OutcomeFailed,
		ExternalID: externalID,
		AccountID:  accountID,
		Reason:     reason,
		Message:    message,
	}
}

// IsLinked reports whether the operation established (or confirmed) a link
func (r *LinkResult) IsLinked() bool {
	return r.Outcome == OutcomeLinked
}

// IsConflict reports whether the result is a one-to-one invariant conflict
func (r *LinkResult) IsConflict() bool {
	return r.Outcome == OutcomeSkipped &&
		(r.Reason == ReasonAccountLinkedElsewhere || r.Reason == ReasonExternalLinkedElsewhere)
}

// SyncResult is the structured outcome of a pull or push sync step
type SyncResult struct {
	ExternalID int64     `json:"external_id"`
	AccountID  uuid.UUID `json:"account_id"`
	Synced     bool      `json:"synced"`
	Message    string    `json:"message,omitempty"`
}
