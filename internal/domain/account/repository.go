package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/partnerportal/backend/internal/domain/shared"
)

// Repository defines the persistence interface for accounts
type Repository interface {
	Save(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByCustomerNumber(ctx context.Context, customerNumber string) ([]*Account, error)
	FindByLinkedExternalID(ctx context.Context, externalID int64) (*Account, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Account], error)
	FindUnlinked(ctx context.Context) ([]*Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
