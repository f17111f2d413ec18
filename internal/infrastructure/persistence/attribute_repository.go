package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/partnerportal/backend/internal/domain/account"
	"github.com/partnerportal/backend/internal/domain/shared"
	"github.com/partnerportal/backend/internal/infrastructure/persistence/models"
)

// GormAttributeRepository implements account.AttributeRepository using GORM
type GormAttributeRepository struct {
	db *gorm.DB
}

// NewGormAttributeRepository creates a new GormAttributeRepository
func NewGormAttributeRepository(db *gorm.DB) *GormAttributeRepository {
	return &GormAttributeRepository{db: db}
}

// Upsert writes an attribute, updating the value when a row for the
// external id and key already exists
func (r *GormAttributeRepository) Upsert(ctx context.Context, attr *account.CustomerAttribute) error {
	model := models.CustomerAttributeModelFromDomain(attr)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(model).Error
}

// FindByExternalID returns all attributes for an external customer
func (r *GormAttributeRepository) FindByExternalID(ctx context.Context, externalID int64) ([]*account.CustomerAttribute, error) {
	var attributeModels []models.CustomerAttributeModel
	if err := r.db.WithContext(ctx).
		Where("external_id = ?", externalID).
		Order("key asc").
		Find(&attributeModels).Error; err != nil {
		return nil, err
	}

	attributes := make([]*account.CustomerAttribute, len(attributeModels))
	for i := range attributeModels {
		attributes[i] = attributeModels[i].ToDomain()
	}
	return attributes, nil
}

// Find returns a single attribute by external id and key
func (r *GormAttributeRepository) Find(ctx context.Context, externalID int64, key string) (*account.CustomerAttribute, error) {
	var model models.CustomerAttributeModel
	if err := r.db.WithContext(ctx).
		Where("external_id = ? AND key = ?", externalID, key).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// DeleteByExternalID removes all attributes for an external customer
func (r *GormAttributeRepository) DeleteByExternalID(ctx context.Context, externalID int64) error {
	return r.db.WithContext(ctx).
		Delete(&models.CustomerAttributeModel{}, "external_id = ?", externalID).Error
}

// Ensure GormAttributeRepository implements the repository interface
var _ account.AttributeRepository = (*GormAttributeRepository)(nil)
