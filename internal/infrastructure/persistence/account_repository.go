package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partnerportal/backend/internal/domain/account"
	"github.com/partnerportal/backend/internal/domain/shared"
	"github.com/partnerportal/backend/internal/infrastructure/persistence/models"
)

// GormAccountRepository implements account.Repository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// Save creates or updates an account. A duplicated-key error on the
// linked external id column is translated to the domain conflict error;
// the unique index is the authoritative one-to-one guard.
func (r *GormAccountRepository) Save(ctx context.Context, a *account.Account) error {
	model := models.AccountModelFromDomain(a)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrConflict
		}
		return err
	}
	return nil
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds an account by email, case-insensitively
func (r *GormAccountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomerNumber finds accounts carrying the given customer number
func (r *GormAccountRepository) FindByCustomerNumber(ctx context.Context, customerNumber string) ([]*account.Account, error) {
	var accountModels []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("LOWER(customer_number) = LOWER(?)", customerNumber).
		Find(&accountModels).Error; err != nil {
		return nil, err
	}
	return toDomainAccounts(accountModels), nil
}

// FindByLinkedExternalID finds the account linked to the given external customer
func (r *GormAccountRepository) FindByLinkedExternalID(ctx context.Context, externalID int64) (*account.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("linked_external_id = ?", externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all accounts matching the filter, paginated
func (r *GormAccountRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*account.Account], error) {
	query := r.db.WithContext(ctx).Model(&models.AccountModel{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(display_name) LIKE ?", pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if role, ok := filter.Filters["role"]; ok {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	orderDir := filter.OrderDir
	if orderDir != "asc" {
		orderDir = "desc"
	}

	var accountModels []models.AccountModel
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&accountModels).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(toDomainAccounts(accountModels), total, filter.Page, filter.PageSize)
	return &page, nil
}

// FindUnlinked finds all accounts without an established link
func (r *GormAccountRepository) FindUnlinked(ctx context.Context) ([]*account.Account, error) {
	var accountModels []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("linked_external_id IS NULL").
		Order("created_at asc").
		Find(&accountModels).Error; err != nil {
		return nil, err
	}
	return toDomainAccounts(accountModels), nil
}

// Delete deletes an account
func (r *GormAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.AccountModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toDomainAccounts(accountModels []models.AccountModel) []*account.Account {
	accounts := make([]*account.Account, len(accountModels))
	for i := range accountModels {
		accounts[i] = accountModels[i].ToDomain()
	}
	return accounts
}

// Ensure GormAccountRepository implements the repository interface
var _ account.Repository = (*GormAccountRepository)(nil)
