package account

import (
	"github.com/partnerportal/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeAccountCreated               = "account.created"
	EventTypeAccountLinked                = "account.linked"
	EventTypeAccountUnlinked              = "account.unlinked"
	EventTypeAccountRemoteStateSynced     = "account.remote_state_synced"
	EventTypeAccountStatusChanged         = "account.status_changed"
	EventTypeAccountCustomerNumberChanged = "account.customer_number_changed"
)

// AccountCreatedEvent is published when a new account is created
type AccountCreatedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// NewAccountCreatedEvent creates a new account created event
func NewAccountCreatedEvent(a *Account) *AccountCreatedEvent {
	return &AccountCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountCreated, "Account", a.ID),
		Email:           a.Email,
		Role:            a.Role,
	}
}

// AccountLinkedEvent is published when an account is linked to an
// external commerce customer
type AccountLinkedEvent struct {
	shared.BaseDomainEvent
	Email      string `json:"email"`
	ExternalID int64  `json:"external_id"`
}

// NewAccountLinkedEvent creates a new account linked event
func NewAccountLinkedEvent(a *Account, externalID int64) *AccountLinkedEvent {
	return &AccountLinkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountLinked, "Account", a.ID),
		Email:           a.Email,
		ExternalID:      externalID,
	}
}

// AccountUnlinkedEvent is published when an operator severs the link to
// an external customer
type AccountUnlinkedEvent struct {
	shared.BaseDomainEvent
	Email      string `json:"email"`
	ExternalID int64  `json:"external_id"`
}

// NewAccountUnlinkedEvent creates a new account unlinked event
func NewAccountUnlinkedEvent(a *Account, externalID int64) *AccountUnlinkedEvent {
	return &AccountUnlinkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountUnlinked, "Account", a.ID),
		Email:           a.Email,
		ExternalID:      externalID,
	}
}

// AccountRemoteStateSyncedEvent is published when the shadow fields are
// refreshed from the external platform
type AccountRemoteStateSyncedEvent struct {
	shared.BaseDomainEvent
	ExternalID int64 `json:"external_id"`
}

// NewAccountRemoteStateSyncedEvent creates a new remote state synced event
func NewAccountRemoteStateSyncedEvent(a *Account, externalID int64) *AccountRemoteStateSyncedEvent {
	return &AccountRemoteStateSyncedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountRemoteStateSynced, "Account", a.ID),
		ExternalID:      externalID,
	}
}

// AccountStatusChangedEvent is published when an account status changes
type AccountStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
}

// NewAccountStatusChangedEvent creates a new status changed event
func NewAccountStatusChangedEvent(a *Account, oldStatus, newStatus Status) *AccountStatusChangedEvent {
	return &AccountStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAccountStatusChanged, "Account", a.ID),
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// AccountCustomerNumberChangedEvent is published when an account's
// customer number is updated
type AccountCustomerNumberChangedEvent struct {
	shared.BaseDomainEvent
	OldCustomerNumber string `json:"old_customer_number"`
	NewCustomerNumber string `json:"new_customer_number"`
}

// NewAccountCustomerNumberChangedEvent creates a new customer number changed event
func NewAccountCustomerNumberChangedEvent(a *Account, old, new string) *AccountCustomerNumberChangedEvent {
	return &AccountCustomerNumberChangedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeAccountCustomerNumberChanged, "Account", a.ID),
		OldCustomerNumber: old,
		NewCustomerNumber: new,
	}
}
