package models

import (
	"time"

	"github.com/partnerportal/backend/internal/domain/account"
	"github.com/partnerportal/backend/internal/domain/shared"
)

// AccountModel is the persistence model for portal accounts
type AccountModel struct {
	AggregateModel
	Email          string `gorm:"type:varchar(200);not null;uniqueIndex"`
	DisplayName    string `gorm:"type:varchar(200)"`
	CustomerNumber string `gorm:"type:varchar(50);index"`
	Role           string `gorm:"type:varchar(20);not null;default:'partner'"`
	Status         string `gorm:"type:varchar(20);not null;default:'pending'"`

	// The unique index is the authoritative guard for the one-to-one
	// link invariant; the application-level check is only a fast path.
	LinkedExternalID *int64 `gorm:"uniqueIndex:idx_accounts_linked_external_id"`

	Phone                  string `gorm:"type:varchar(50)"`
	Address                string `gorm:"type:text"`
	ExternalVerified       bool   `gorm:"not null;default:false"`
	ExternalMarketingOptIn bool   `gorm:"not null;default:false"`
	ExternalTags           string `gorm:"type:text"`
	ExternalNote           string `gorm:"type:text"`
	LastSyncedAt           *time.Time
}

// TableName returns the table name for AccountModel
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain account
func (m *AccountModel) ToDomain() *account.Account {
	a := &account.Account{
		Email:                  m.Email,
		DisplayName:            m.DisplayName,
		CustomerNumber:         m.CustomerNumber,
		Role:                   account.Role(m.Role),
		Status:                 account.Status(m.Status),
		LinkedExternalID:       m.LinkedExternalID,
		Phone:                  m.Phone,
		Address:                m.Address,
		ExternalVerified:       m.ExternalVerified,
		ExternalMarketingOptIn: m.ExternalMarketingOptIn,
		ExternalTags:           m.ExternalTags,
		ExternalNote:           m.ExternalNote,
		LastSyncedAt:           m.LastSyncedAt,
	}
	m.PopulateAggregateRoot(&a.BaseAggregateRoot)
	return a
}

// AccountModelFromDomain converts a domain account to the persistence model
func AccountModelFromDomain(a *account.Account) *AccountModel {
	m := &AccountModel{
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
	}
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	return m
}

// CustomerAttributeModel is the persistence model for structured
// external customer attributes
type CustomerAttributeModel struct {
	BaseModel
	ExternalID int64  `gorm:"not null;uniqueIndex:idx_customer_attribute_key"`
	Key        string `gorm:"type:varchar(50);not null;uniqueIndex:idx_customer_attribute_key"`
	Value      string `gorm:"type:text;not null"`
}

// TableName returns the table name for CustomerAttributeModel
func (CustomerAttributeModel) TableName() string {
	return "customer_attributes"
}

// ToDomain converts the persistence model to a domain customer attribute
func (m *CustomerAttributeModel) ToDomain() *account.CustomerAttribute {
	return &account.CustomerAttribute{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ExternalID: m.ExternalID,
		Key:        m.Key,
		Value:      m.Value,
	}
}

// CustomerAttributeModelFromDomain converts a domain customer attribute
// to the persistence model
func CustomerAttributeModelFromDomain(attr *account.CustomerAttribute) *CustomerAttributeModel {
	m := &CustomerAttributeModel{
		ExternalID: attr.ExternalID,
		Key:        attr.Key,
		Value:      attr.Value,
	}
	m.FromDomainBaseEntity(attr.BaseEntity)
	return m
}
