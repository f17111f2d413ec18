package portal

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partnerportal/backend/internal/domain/account"
	"github.com/partnerportal/backend/internal/domain/commerce"
	"github.com/partnerportal/backend/internal/domain/shared"
)

// AccountService handles portal account management operations
type AccountService struct {
	accounts account.Repository
	gateway  commerce.Gateway
	eventBus shared.EventBus
	logger   *zap.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(accounts account.Repository, gateway commerce.Gateway, eventBus shared.EventBus, logger *zap.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		gateway:  gateway,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Create registers a new portal account
func (s *AccountService) Create(ctx context.Context, req CreateAccountRequest) (*AccountResponse, error) {
	if _, err := s.accounts.FindByEmail(ctx, req.Email); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Account with this email already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	role := account.Role(req.Role)
	if req.Role == "" {
		role = account.RolePartner
	}

	a, err := account.NewAccount(req.Email, req.DisplayName, role)
	if err != nil {
		return nil, err
	}
	if req.CustomerNumber != "" {
		if err := a.SetCustomerNumber(req.CustomerNumber); err != nil {
			return nil, err
		}
	}

	if err := s.accounts.Save(ctx, a); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, a)

	s.logger.Info("account created",
		zap.String("account_id", a.ID.String()),
		zap.String("email", a.Email))

	return toAccountResponse(a), nil
}

// Get returns a single account
func (s *AccountService) Get(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	a, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAccountResponse(a), nil
}

// GetDetail returns an account together with its recent external
// orders. The order fetch is best-effort display data; a remote
// failure leaves the list empty instead of failing the whole view.
func (s *AccountService) GetDetail(ctx context.Context, id uuid.UUID) (*AccountDetailResponse, error) {
	a, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &AccountDetailResponse{Account: *toAccountResponse(a)}
	if a.IsLinked() {
		orders, err := s.gateway.ListOrders(ctx, *a.LinkedExternalID)
		if err != nil {
			s.logger.Warn("order fetch failed for account detail",
				zap.String("account_id", id.String()),
				zap.Int64("external_id", *a.LinkedExternalID),
				zap.Error(err))
			detail.OrdersUnavailable = true
		} else {
			detail.Orders = toOrderResponses(orders)
		}
	}
	return detail, nil
}

// List returns a filtered page of accounts
func (s *AccountService) List(ctx context.Context, req ListAccountsRequest) (*shared.Paginated[*AccountResponse], error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	filter.Search = req.Search
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}
	if req.Role != "" {
		filter.Filters["role"] = req.Role
	}

	page, err := s.accounts.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*AccountResponse, len(page.Items))
	for i, a := range page.Items {
		items[i] = toAccountResponse(a)
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// Block blocks an account
func (s *AccountService) Block(ctx context.Context, id uuid.UUID) (*AccountResponse, error) {
	a, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := a.Block(); err != nil {
		return nil, err
	}
	if err := s.accounts.Save(ctx, a); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, a)
	return toAccountResponse(a), nil
}

func (s *AccountService) publishEvents(ctx context.Context, a *account.Account) {
	for _, e := range a.GetDomainEvents() {
		if err := s.eventBus.Publish(ctx, e); err != nil {
			s.logger.Warn("event publish failed",
				zap.String("event_type", e.EventType()),
				zap.Error(err))
		}
	}
	a.ClearDomainEvents()
}
