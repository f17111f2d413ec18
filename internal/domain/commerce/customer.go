package commerce

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Gateway errors returned by implementations of the commerce Gateway.
// Every remote failure is wrapped into one of these sentinels so callers
// can translate them into typed outcomes instead of propagating raw
// transport errors.
var (
	ErrCustomerNotFound = errors.New("commerce: customer not found")
	ErrUnavailable      = errors.New("commerce: platform temporarily unavailable")
	ErrRequestFailed    = errors.New("commerce: platform request failed")
	ErrInvalidResponse  = errors.New("commerce: invalid platform response")
)

// Customer is a customer record as owned by the external commerce platform.
// It is read-mostly on the portal side; the platform remains the source of
// truth for every field except the note, which the portal also writes.
type Customer struct {
	ID             int64
	Email          string
	FirstName      string
	LastName       string
	Phone          string
	DefaultAddress *Address
	Verified       bool
	MarketingOptIn bool
	Tags           string
	Note           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName returns the customer's display name
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CustomerNumber returns the customer number encoded in the note field,
// or empty string if none is recoverable.
func (c *Customer) CustomerNumber() string {
	return ExtractCustomerNumber(c.Note)
}

// CompanyName returns the company name encoded in the note field,
// or empty string if none is recoverable.
func (c *Customer) CompanyName() string {
	return ExtractCompanyName(c.Note)
}

// Address is a structured platform address
type Address struct {
	Address1 string
	Address2 string
	Zip      string
	City     string
	Country  string
}

// Format renders the address as a single display line
func (a *Address) Format() string {
	if a == nil {
		return ""
	}
	parts := make([]string, 0, 4)
	if a.Address1 != "" {
		parts = append(parts, a.Address1)
	}
	if a.Address2 != "" {
		parts = append(parts, a.Address2)
	}
	if a.Zip != "" || a.City != "" {
		parts = append(parts, strings.TrimSpace(a.Zip+" "+a.City))
	}
	if a.Country != "" {
		parts = append(parts, a.Country)
	}
	return strings.Join(parts, ", ")
}

// Order is a platform order in condensed form, used for the account
// detail view only
type Order struct {
	ID              int64
	Name            string
	Total           decimal.Decimal
	Currency        string
	FinancialStatus string
	CreatedAt       time.Time
}

// CreateCustomerInput contains the fields for creating a platform customer
type CreateCustomerInput struct {
	Email          string
	FirstName      string
	LastName       string
	Phone          string
	Note           string
	Tags           string
	MarketingOptIn bool
}

// UpdateCustomerInput contains the fields for a partial customer update.
// Nil fields are left untouched on the platform.
type UpdateCustomerInput struct {
	Verified       *bool
	Note           *string
	Tags           *string
	Phone          *string
	MarketingOptIn *bool
}

// Empty reports whether the update carries no changes
func (u UpdateCustomerInput) Empty() bool {
	return u.Verified == nil && u.Note == nil && u.Tags == nil &&
		u.Phone == nil && u.MarketingOptIn == nil
}

// Gateway is the portal's view of the external commerce platform's
// customer API. Implementations are pure I/O boundaries; no business
// logic beyond request shaping.
type Gateway interface {
	// GetCustomer fetches a single customer by platform id.
	// Returns ErrCustomerNotFound if the id is unknown on the platform.
	GetCustomer(ctx context.Context, id int64) (*Customer, error)

	// GetCustomerByEmail looks up a customer by exact email.
	// Returns ErrCustomerNotFound when no customer carries the email.
	GetCustomerByEmail(ctx context.Context, email string) (*Customer, error)

	// ListCustomers returns all customers, paginating internally.
	ListCustomers(ctx context.Context) ([]Customer, error)

	// CreateCustomer creates a customer on the platform.
	CreateCustomer(ctx context.Context, input CreateCustomerInput) (*Customer, error)

	// UpdateCustomer applies a partial update to an existing customer.
	// An update with no fields set performs no remote write and returns
	// the current state.
	UpdateCustomer(ctx context.Context, id int64, input UpdateCustomerInput) (*Customer, error)

	// ListOrders returns the customer's orders, newest first.
	ListOrders(ctx context.Context, customerID int64) ([]Order, error)
}
