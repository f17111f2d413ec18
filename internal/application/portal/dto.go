package portal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partnerportal/backend/internal/domain/account"
	"github.com/partnerportal/backend/internal/domain/commerce"
)

// CreateAccountRequest contains the fields for registering an account
type CreateAccountRequest struct {
	Email          string `json:"email" binding:"required,email"`
	DisplayName    string `json:"display_name" binding:"max=200"`
	CustomerNumber string `json:"customer_number" binding:"max=50"`
	Role           string `json:"role" binding:"omitempty,oneof=partner admin"`
}

// ListAccountsRequest contains filter options for listing accounts
type ListAccountsRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=pending active blocked"`
	Role     string `form:"role" binding:"omitempty,oneof=partner admin"`
}

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

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderResponse is a condensed external order for the account detail view
type OrderResponse struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Total           decimal.Decimal `json:"total"`
	Currency        string          `json:"currency"`
	FinancialStatus string          `json:"financial_status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// AccountDetailResponse combines an account with its external orders
type AccountDetailResponse struct {
	Account AccountResponse `json:"account"`
	Orders  []OrderResponse `json:"orders"`
	// OrdersUnavailable is set when the order fetch failed; the account
	// data itself is still current.
	OrdersUnavailable bool `json:"orders_unavailable,omitempty"`
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

func toOrderResponses(orders []commerce.Order) []OrderResponse {
	result := make([]OrderResponse, len(orders))
	for i, o := range orders {
		result[i] = OrderResponse{
			ID:              o.ID,
			Name:            o.Name,
			Total:           o.Total,
			Currency:        o.Currency,
			FinancialStatus: o.FinancialStatus,
			CreatedAt:       o.CreatedAt,
		}
	}
	return result
}
