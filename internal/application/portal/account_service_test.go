package portal

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

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

type nopEventBus struct{}

func (nopEventBus) Publish(ctx context.Context, event shared.DomainEvent) error { return nil }
func (nopEventBus) Subscribe(eventType string, handler shared.EventHandler)     {}

// =============================================================================
// AccountService Tests
// =============================================================================

func newTestAccountService(accounts *MockAccountRepository, gateway *MockGateway) *AccountService {
	return NewAccountService(accounts, gateway, nopEventBus{}, zap.NewNop())
}

func mustAccount(t *testing.T, email string) *account.Account {
	t.Helper()
	a, err := account.NewAccount(email, "Test Partner", account.RolePartner)
	require.NoError(t, err)
	a.ClearDomainEvents()
	return a
}

func TestAccountService_Create(t *testing.T) {
	accounts := new(MockAccountRepository)
	gateway := new(MockGateway)
	svc := newTestAccountService(accounts, gateway)

	accounts.On("FindByEmail", mock.Anything, "Erika@Acme.example").Return(nil, shared.ErrNotFound)
	accounts.On("Save", mock.Anything, mock.Anything).Return(nil)

	resp, err := svc.Create(context.Background(), CreateAccountRequest{
		Email:          "Erika@Acme.example",
		DisplayName:    "Erika Mustermann",
		CustomerNumber: "10234",
	})

	require.NoError(t, err)
	assert.Equal(t, "erika@acme.example", resp.Email)
	assert.Equal(t, "10234", resp.CustomerNumber)
	assert.Equal(t, string(account.RolePartner), resp.Role)
	assert.Equal(t, string(account.StatusPending), resp.Status)
	assert.Nil(t, resp.LinkedExternalID)
	accounts.AssertExpectations(t)
}

func TestAccountService_Create_DuplicateEmail(t *testing.T) {
	accounts := new(MockAccountRepository)
	gateway := new(MockGateway)
	svc := newTestAccountService(accounts, gateway)

	existing := mustAccount(t, "erika@acme.example")
	accounts.On("FindByEmail", mock.Anything, "erika@acme.example").Return(existing, nil)

	resp, err := svc.Create(context.Background(), CreateAccountRequest{Email: "erika@acme.example"})

	assert.Nil(t, resp)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	accounts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAccountService_Create_InvalidEmail(t *testing.T) {
	accounts := new(MockAccountRepository)
	gateway := new(MockGateway)
	svc := newTestAccountService(accounts, gateway)

	accounts.On("FindByEmail", mock.Anything, "not-an-email").Return(nil, shared.ErrNotFound)

	resp, err := svc.Create(context.Background(), CreateAccountRequest{Email: "not-an-email"})

	assert.Nil(t, resp)
	assert.Error(t, err)
}

func TestAccountService_GetDetail_WithOrders(t *testing.T) {
	accounts := new(MockAccountRepository)
	gateway := new(MockGateway)
	svc := newTestAccountService(accounts, gateway)

	a := mustAccount(t, "erika@acme.example")
	require.NoError(t, a.LinkTo(account.RemoteSnapshot{ExternalID: 999}))
	a.ClearDomainEvents()

	orders := []commerce.Order{
		{ID: 5001, Name: "#1042", Total: decimal.RequireFromString("129.90"), Currency: "EUR", FinancialStatus: "paid"},
	}

	accounts.On("FindByID", mock.Anything, a.ID).Return(a, nil)
	gateway.On("ListOrders", mock.Anything, int64(999)).Return(orders, nil)

	detail, err := svc.GetDetail(context.Background(), a.ID)

	require.NoError(t, err)
	assert.False(t, detail.OrdersUnavailable)
	require.Len(t, detail.Orders, 1)
	assert.Equal(t, "#1042", detail.Orders[0].Name)
	assert.True(t, detail.Orders[0].Total.Equal(decimal.RequireFromString("129.90")))
}

func TestAccountService_GetDetail_OrderFetchFailureIsNotFatal(t *testing.T) {
	accounts := new(MockAccountRepository)
	gateway := new(MockGateway)
	svc := newTestAccountService(accounts, gateway)

	a := mustAccount(t, "erika@acme.example")
	require.NoError(t, a.LinkTo(account.RemoteSnapshot{ExternalID: 999}))
	a.ClearDomainEvents()

	accounts.On("FindByID", mock.Anything, a.ID).Return(a, nil)
	gateway.On("ListOrders", mock.Anything, int64(999)).
		Return(nil, fmt.Errorf("%w: status 503", commerce.ErrUnavailable))

	detail, err := svc.GetDetail(context.Background(), a.ID)

	require.NoError(t, err)
	assert.True(t, detail.OrdersUnavailable)
	assert.Empty(t, detail.Orders)
	assert.Equal(t, a.Email, detail.Account.Email)
}

func TestAccountService_GetDetail_UnlinkedSkipsOrderFetch(t *testing.T) {
	accounts := new(MockAccountRepository)
	gateway := new(MockGateway)
	svc := newTestAccountService(accounts, gateway)

	a := mustAccount(t, "erika@acme.example")
	accounts.On("FindByID", mock.Anything, a.ID).Return(a, nil)

	detail, err := svc.GetDetail(context.Background(), a.ID)

	require.NoError(t, err)
	assert.Empty(t, detail.Orders)
	gateway.AssertNotCalled(t, "ListOrders", mock.Anything, mock.Anything)
}

func TestAccountService_List_MapsFilters(t *testing.T) {
	accounts := new(MockAccountRepository)
	gateway := new(MockGateway)
	svc := newTestAccountService(accounts, gateway)

	a := mustAccount(t, "erika@acme.example")
	page := shared.NewPaginated([]*account.Account{a}, 1, 2, 10)

	accounts.On("FindAll", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 2 && f.PageSize == 10 && f.Search == "acme" &&
			f.Filters["status"] == "pending" && f.Filters["role"] == "partner"
	})).Return(&page, nil)

	result, err := svc.List(context.Background(), ListAccountsRequest{
		Page:     2,
		PageSize: 10,
		Search:   "acme",
		Status:   "pending",
		Role:     "partner",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
	require.Len(t, result.Items, 1)
	assert.Equal(t, a.Email, result.Items[0].Email)
}

func TestAccountService_Block(t *testing.T) {
	accounts := new(MockAccountRepository)
	gateway := new(MockGateway)
	svc := newTestAccountService(accounts, gateway)

	a := mustAccount(t, "erika@acme.example")
	require.NoError(t, a.Activate())
	a.ClearDomainEvents()

	accounts.On("FindByID", mock.Anything, a.ID).Return(a, nil)
	accounts.On("Save", mock.Anything, a).Return(nil)

	resp, err := svc.Block(context.Background(), a.ID)

	require.NoError(t, err)
	assert.Equal(t, string(account.StatusBlocked), resp.Status)
}

func TestAccountService_Get_NotFound(t *testing.T) {
	accounts := new(MockAccountRepository)
	gateway := new(MockGateway)
	svc := newTestAccountService(accounts, gateway)

	id := uuid.New()
	accounts.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	resp, err := svc.Get(context.Background(), id)

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
