package account

import (
	"regexp"
	"strings"
	"time"

	"github.com/partnerportal/backend/internal/domain/shared"
)

// Role represents the portal role of an account
type Role string

const (
	RolePartner Role = "partner"
	RoleAdmin   Role = "admin"
)

// Status represents the lifecycle status of an account
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
)

// RemoteSnapshot carries the externally-owned customer state that is
// mirrored onto the account as shadow fields. The external platform is
// the source of truth for every field in here; portal code only ever
// overwrites the whole snapshot, never edits individual shadow fields.
type RemoteSnapshot struct {
	ExternalID     int64
	Phone          string
	Address        string
	Verified       bool
	MarketingOptIn bool
	Tags           string
	Note           string
}

// Account represents a portal account in the partner portal.
// It is the aggregate root for reconciliation-related operations.
type Account struct {
	shared.BaseAggregateRoot
	Email          string `gorm:"type:varchar(200);not null;uniqueIndex"`
	DisplayName    string `gorm:"type:varchar(200)"`
	CustomerNumber string `gorm:"type:varchar(50);index"`
	Role           Role   `gorm:"type:varchar(20);not null;default:'partner'"`
	Status         Status `gorm:"type:varchar(20);not null;default:'pending'"`

	// LinkedExternalID references the external commerce platform customer
	// this account is reconciled with. At most one account may carry a
	// given external id; the storage layer enforces this with a unique
	// index.
	LinkedExternalID *int64 `gorm:"uniqueIndex"`

	// Shadow fields, populated only while linked.
	Phone                  string     `gorm:"type:varchar(50)"`
	Address                string     `gorm:"type:text"`
	ExternalVerified       bool       `gorm:"not null;default:false"`
	ExternalMarketingOptIn bool       `gorm:"not null;default:false"`
	ExternalTags           string     `gorm:"type:text"`
	ExternalNote           string     `gorm:"type:text"`
	LastSyncedAt           *time.Time `gorm:""`
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "accounts"
}

// NewAccount creates a new portal account with required fields
func NewAccount(email, displayName string, role Role) (*Account, error) {
	if err := validateAccountEmail(email); err != nil {
		return nil, err
	}
	if err := validateRole(role); err != nil {
		return nil, err
	}
	if displayName != "" && len(displayName) > 200 {
		return nil, shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}

	a := &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             strings.ToLower(email),
		DisplayName:       displayName,
		Role:              role,
		Status:            StatusPending,
	}

	a.AddDomainEvent(NewAccountCreatedEvent(a))

	return a, nil
}

// IsLinked reports whether the account is reconciled with an external customer
func (a *Account) IsLinked() bool {
	return a.LinkedExternalID != nil
}

// IsLinkedTo reports whether the account is linked to the given external id
func (a *Account) IsLinkedTo(externalID int64) bool {
	return a.LinkedExternalID != nil && *a.LinkedExternalID == externalID
}

// LinkTo establishes the link to an external customer and merges its state
// into the shadow fields in one step. Linking an account that already
// carries a different external id is a conflict; the existing link is
// never overwritten.
func (a *Account) LinkTo(snapshot RemoteSnapshot) error {
	if a.LinkedExternalID != nil && *a.LinkedExternalID != snapshot.ExternalID {
		return shared.NewDomainError("ALREADY_LINKED", "Account is already linked to a different external customer")
	}

	externalID := snapshot.ExternalID
	a.LinkedExternalID = &externalID
	a.applySnapshot(snapshot)

	a.AddDomainEvent(NewAccountLinkedEvent(a, snapshot.ExternalID))

	return nil
}

// Unlink severs the link to the external customer and clears the shadow
// fields. The remote customer is left untouched; this is the operator's
// counterpart to the retained link after an upstream deletion.
func (a *Account) Unlink() (int64, error) {
	if a.LinkedExternalID == nil {
		return 0, shared.NewDomainError("NOT_LINKED", "Account is not linked to an external customer")
	}

	externalID := *a.LinkedExternalID
	a.LinkedExternalID = nil
	a.Phone = ""
	a.Address = ""
	a.ExternalVerified = false
	a.ExternalMarketingOptIn = false
	a.ExternalTags = ""
	a.ExternalNote = ""
	a.LastSyncedAt = nil
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAccountUnlinkedEvent(a, externalID))

	return externalID, nil
}

// ApplyRemoteState overwrites the shadow fields with fresh remote state.
// The remote side is the source of truth for shadow fields, so the
// overwrite is unconditional; that makes duplicate or out-of-order
// deliveries harmless. Requires an established link.
func (a *Account) ApplyRemoteState(snapshot RemoteSnapshot) error {
	if !a.IsLinkedTo(snapshot.ExternalID) {
		return shared.NewDomainError("NOT_LINKED", "Account is not linked to this external customer")
	}

	a.applySnapshot(snapshot)

	a.AddDomainEvent(NewAccountRemoteStateSyncedEvent(a, snapshot.ExternalID))

	return nil
}

func (a *Account) applySnapshot(snapshot RemoteSnapshot) {
	now := time.Now()
	a.Phone = snapshot.Phone
	a.Address = snapshot.Address
	a.ExternalVerified = snapshot.Verified
	a.ExternalMarketingOptIn = snapshot.MarketingOptIn
	a.ExternalTags = snapshot.Tags
	a.ExternalNote = snapshot.Note
	a.LastSyncedAt = &now
	a.UpdatedAt = now
	a.IncrementVersion()
}

// Activate moves the account from pending to active
func (a *Account) Activate() error {
	if a.Status == StatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Account is already active")
	}
	if a.Status == StatusBlocked {
		return shared.NewDomainError("INVALID_STATE", "Blocked accounts cannot be activated directly")
	}

	oldStatus := a.Status
	a.Status = StatusActive
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAccountStatusChangedEvent(a, oldStatus, StatusActive))

	return nil
}

// Block blocks the account
func (a *Account) Block() error {
	if a.Status == StatusBlocked {
		return shared.NewDomainError("ALREADY_BLOCKED", "Account is already blocked")
	}

	oldStatus := a.Status
	a.Status = StatusBlocked
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAccountStatusChangedEvent(a, oldStatus, StatusBlocked))

	return nil
}

// SetCustomerNumber updates the account's own customer number field.
// This field is a matching heuristic, not an enforced mirror of the
// external note; propagation to the remote side is the sync layer's job.
func (a *Account) SetCustomerNumber(customerNumber string) error {
	if err := validateCustomerNumber(customerNumber); err != nil {
		return err
	}

	old := a.CustomerNumber
	a.CustomerNumber = customerNumber
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewAccountCustomerNumberChangedEvent(a, old, customerNumber))

	return nil
}

// SetDisplayName updates the account's display name
func (a *Account) SetDisplayName(displayName string) error {
	if len(displayName) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}

	a.DisplayName = displayName
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// IsActive returns true if the account is active
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// IsAdmin returns true if the account has the admin role
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// EmailEquals compares the account email case-insensitively
func (a *Account) EmailEquals(email string) bool {
	return email != "" && strings.EqualFold(a.Email, email)
}

// Validation functions

var customerNumberPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]*$`)

func validateAccountEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

func validateRole(role Role) error {
	switch role {
	case RolePartner, RoleAdmin:
		return nil
	default:
		return shared.NewDomainError("INVALID_ROLE", "Role must be 'partner' or 'admin'")
	}
}

func validateCustomerNumber(customerNumber string) error {
	if len(customerNumber) > 50 {
		return shared.NewDomainError("INVALID_CUSTOMER_NUMBER", "Customer number cannot exceed 50 characters")
	}
	if !customerNumberPattern.MatchString(customerNumber) {
		return shared.NewDomainError("INVALID_CUSTOMER_NUMBER", "Customer number can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}
