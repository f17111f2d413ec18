package reconcile

import (
	"time"

	"github.com/google/uuid"

	"github.com/partnerportal/backend/internal/domain/account"
)

// AccountResponse is the application-layer view of a portal account
type AccountResponse struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	CustomerNumber string    `json:"customer_number"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`

	LinkedExternalID *int64 `json:"linked_external_id,omitempty"`

	Phone                  string     `json:"phone,omitempty"`
	Address                string     `json:"address,omitempty"`
	ExternalVerified       bool       `json:"external_verified"`
	ExternalMarketingOptIn bool       `json:"external_marketing_opt_in"`
	ExternalTags           string     `json:"external_tags,omitempty"`
	ExternalNote           string     `json:"external_note,omitempty"`
	LastSyncedAt           *time.Time `json:"last_synced_at,omitempty"`

	// RemoteSyncError is set when a local change succeeded but its
	// propagation to the commerce platform failed.
	RemoteSyncError string `json:"remote_sync_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toAccountResponse(a *account.Account) *AccountResponse {
	return &AccountResponse{
		ID:                     a.ID,
		Email:                  a.Email,
		DisplayName:            a.DisplayName,
		CustomerNumber:         a.CustomerNumber,
		Role:                   string(a.Role),
		Status:                 string(a.Status),
		LinkedExternalID:       a.LinkedExternalID,
		Phone:                  a.Phone,
		Address:                a.Address,
		ExternalVerified:       a.ExternalVerified,
		ExternalMarketingOptIn: a.ExternalMarketingOptIn,
		ExternalTags:           a.ExternalTags,
		ExternalNote:           a.ExternalNote,
		LastSyncedAt:           a.LastSyncedAt,
		CreatedAt:              a.CreatedAt,
		UpdatedAt:              a.UpdatedAt,
	}
}
