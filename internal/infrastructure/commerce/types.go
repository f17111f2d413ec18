package commerce

import (
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/partnerportal/backend/internal/domain/commerce"
)

// CustomerPayload is the wire representation of a platform customer
type CustomerPayload struct {
	ID               int64           `json:"id"`
	Email            string          `json:"email"`
	FirstName        string          `json:"first_name"`
	LastName         string          `json:"last_name"`
	Phone            string          `json:"phone"`
	VerifiedEmail    bool            `json:"verified_email"`
	AcceptsMarketing bool            `json:"accepts_marketing"`
	Tags             string          `json:"tags"`
	Note             string          `json:"note"`
	DefaultAddress   *AddressPayload `json:"default_address,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AddressPayload is the wire representation of a platform address
type AddressPayload struct {
	ID       int64  `json:"id,omitempty"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2,omitempty"`
	Zip      string `json:"zip"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Default  bool   `json:"default,omitempty"`
}

// OrderPayload is the wire representation of a platform order
type OrderPayload struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	TotalPrice      string    `json:"total_price"`
	Currency        string    `json:"currency"`
	FinancialStatus string    `json:"financial_status"`
	CreatedAt       time.Time `json:"created_at"`
}

// Response envelopes used by the platform admin API
type (
	// CustomerResponse wraps a single customer
	CustomerResponse struct {
		Customer *CustomerPayload `json:"customer"`
	}

	// CustomerListResponse wraps a customer page
	CustomerListResponse struct {
		Customers []CustomerPayload `json:"customers"`
	}

	// OrderListResponse wraps an order list
	OrderListResponse struct {
		Orders []OrderPayload `json:"orders"`
	}

	// CustomerRequest wraps a customer create/update body
	CustomerRequest struct {
		Customer map[string]any `json:"customer"`
	}
)

// ToDomain converts a wire customer to the domain representation
func (p *CustomerPayload) ToDomain() *domain.Customer {
	c := &domain.Customer{
		ID:             p.ID,
		Email:          p.Email,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Phone:          p.Phone,
		Verified:       p.VerifiedEmail,
		MarketingOptIn: p.AcceptsMarketing,
		Tags:           p.Tags,
		Note:           p.Note,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.DefaultAddress != nil {
		c.DefaultAddress = &domain.Address{
			Address1: p.DefaultAddress.Address1,
			Address2: p.DefaultAddress.Address2,
			Zip:      p.DefaultAddress.Zip,
			City:     p.DefaultAddress.City,
			Country:  p.DefaultAddress.Country,
		}
	}
	return c
}

// ToDomain converts a wire order to the domain representation. A total
// that fails to parse becomes zero rather than an error; order display
// is best-effort.
func (p *OrderPayload) ToDomain() domain.Order {
	total, err := decimal.NewFromString(p.TotalPrice)
	if err != nil {
		total = decimal.Zero
	}
	return domain.Order{
		ID:              p.ID,
		Name:            p.Name,
		Total:           total,
		Currency:        p.Currency,
		FinancialStatus: p.FinancialStatus,
		CreatedAt:       p.CreatedAt,
	}
}
