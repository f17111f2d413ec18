package reconcile

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/partnerportal/backend/internal/domain/account"
	"github.com/partnerportal/backend/internal/domain/commerce"
	"github.com/partnerportal/backend/internal/domain/shared"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockAccountRepository is a mock implementation of account.Repository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Save(ctx context.Context, a *account.Account) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByCustomerNumber(ctx context.Context, customerNumber string) ([]*account.Account, error) {
	args := m.Called(ctx, customerNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByLinkedExternalID(ctx context.Context, externalID int64) (*account.Account, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*account.Account], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[*account.Account]), args.Error(1)
}

func (m *MockAccountRepository) FindUnlinked(ctx context.Context) ([]*account.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.Account), args.Error(1)
}

func (m *MockAccountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAttributeRepository is a mock implementation of account.AttributeRepository
type MockAttributeRepository struct {
	mock.Mock
}

func (m *MockAttributeRepository) Upsert(ctx context.Context, attr *account.CustomerAttribute) error {
	args := m.Called(ctx, attr)
	return args.Error(0)
}

func (m *MockAttributeRepository) FindByExternalID(ctx context.Context, externalID int64) ([]*account.CustomerAttribute, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.CustomerAttribute), args.Error(1)
}

func (m *MockAttributeRepository) Find(ctx context.Context, externalID int64, key string) (*account.CustomerAttribute, error) {
	args := m.Called(ctx, externalID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.CustomerAttribute), args.Error(1)
}

func (m *MockAttributeRepository) DeleteByExternalID(ctx context.Context, externalID int64) error {
	args := m.Called(ctx, externalID)
	return args.Error(0)
}

// MockGateway is a mock implementation of commerce.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetCustomer(ctx context.Context, id int64) (*commerce.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.Customer), args.Error(1)
}

func (m *MockGateway) GetCustomerByEmail(ctx context.Context, email string) (*commerce.Customer, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.Customer), args.Error(1)
}

func (m *MockGateway) ListCustomers(ctx context.Context) ([]commerce.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commerce.Customer), args.Error(1)
}

func (m *MockGateway) CreateCustomer(ctx context.Context, input commerce.CreateCustomerInput) (*commerce.Customer, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.Customer), args.Error(1)
}

func (m *MockGateway) UpdateCustomer(ctx context.Context, id int64, input commerce.UpdateCustomerInput) (*commerce.Customer, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.Customer), args.Error(1)
}

func (m *MockGateway) ListOrders(ctx context.Context, customerID int64) ([]commerce.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commerce.Order), args.Error(1)
}

// nopEventBus discards published events
type nopEventBus struct{}

func (nopEventBus) Publish(ctx context.Context, event shared.DomainEvent) error { return nil }
func (nopEventBus) Subscribe(eventType string, handler shared.EventHandler)     {}
