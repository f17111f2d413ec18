package account

import (
	"context"
	"time"

	"github.com/partnerportal/backend/internal/domain/shared"
)

// Attribute keys for externally mirrored customer attributes
const (
	AttributeCustomerNumber = "customer_number"
	AttributeCompanyName    = "company_name"
)

// CustomerAttribute holds one structured attribute of an external
// customer. The external platform stores these packed into a free-text
// note field; the portal keeps them as individual rows so that updating
// one attribute never clobbers another.
type CustomerAttribute struct {
	shared.BaseEntity
	ExternalID int64  `gorm:"not null;uniqueIndex:idx_customer_attribute_key"`
	Key        string `gorm:"type:varchar(50);not null;uniqueIndex:idx_customer_attribute_key"`
	Value      string `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (CustomerAttribute) TableName() string {
	return "customer_attributes"
}

// NewCustomerAttribute creates a new customer attribute
func NewCustomerAttribute(externalID int64, key, value string) (*CustomerAttribute, error) {
	if externalID <= 0 {
		return nil, shared.NewDomainError("INVALID_EXTERNAL_ID", "External customer id must be positive")
	}
	if key == "" {
		return nil, shared.NewDomainError("INVALID_ATTRIBUTE_KEY", "Attribute key cannot be empty")
	}

	return &CustomerAttribute{
		BaseEntity: shared.NewBaseEntity(),
		ExternalID: externalID,
		Key:        key,
		Value:      value,
	}, nil
}

// SetValue updates the attribute value
func (c *CustomerAttribute) SetValue(value string) {
	c.Value = value
	c.UpdatedAt = time.Now()
}

// AttributeRepository defines the persistence interface for customer attributes
type AttributeRepository interface {
	Upsert(ctx context.Context, attribute *CustomerAttribute) error
	FindByExternalID(ctx context.Context, externalID int64) ([]*CustomerAttribute, error)
	Find(ctx context.Context, externalID int64, key string) (*CustomerAttribute, error)
	DeleteByExternalID(ctx context.Context, externalID int64) error
}

// AttributeMap builds a key/value lookup from a list of attributes
func AttributeMap(attributes []*CustomerAttribute) map[string]string {
	m := make(map[string]string, len(attributes))
	for _, attr := range attributes {
		m[attr.Key] = attr.Value
	}
	return m
}
