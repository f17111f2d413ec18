package reconcile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partnerportal/backend/internal/domain/account"
	"github.com/partnerportal/backend/internal/domain/commerce"
	"github.com/partnerportal/backend/internal/domain/reconcile"
	"github.com/partnerportal/backend/internal/domain/shared"
)

// Service orchestrates identity reconciliation between portal accounts
// and external commerce customers
type Service struct {
	accounts   account.Repository
	attributes account.AttributeRepository
	gateway    commerce.Gateway
	eventBus   shared.EventBus
	logger     *zap.Logger
}

// ServiceConfig contains the dependencies for Service
type ServiceConfig struct {
	Accounts   account.Repository
	Attributes account.AttributeRepository
	Gateway    commerce.Gateway
	EventBus   shared.EventBus
	Logger     *zap.Logger
}

// NewService creates a new reconciliation service
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		accounts:   cfg.Accounts,
		attributes: cfg.Attributes,
		gateway:    cfg.Gateway,
		eventBus:   cfg.EventBus,
		logger:     cfg.Logger,
	}
}

// LinkCustomer establishes the link between an external customer and a
// portal account. Every failure mode becomes a typed outcome; the method
// never returns an error.
//
// The preconditions run in a fixed order: account exists, external
// record is fetchable, neither side is linked elsewhere. The storage
// layer's unique index on the link column remains the authoritative
// conflict guard; the precondition checks are a fast path.
func (s *Service) LinkCustomer(ctx context.Context, externalID int64, accountID uuid.UUID) *reconcile.LinkResult {
	a, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return reconcile.Failed(externalID, accountID, reconcile.ReasonAccountNotFound, "account not found")
		}
		return reconcile.Failed(externalID, accountID, reconcile.ReasonStorageError, err.Error())
	}

	customer, err := s.gateway.GetCustomer(ctx, externalID)
	if err != nil {
		if errors.Is(err, commerce.ErrCustomerNotFound) {
			return reconcile.Failed(externalID, accountID, reconcile.ReasonExternalNotFound, "external record not found")
		}
		s.logger.Warn("external customer fetch failed",
			zap.Int64("external_id", externalID),
			zap.Error(err))
		return reconcile.Failed(externalID, accountID, reconcile.ReasonRemoteUnavailable, err.Error())
	}

	if a.IsLinkedTo(externalID) {
		return reconcile.Skipped(externalID, accountID, reconcile.ReasonAlreadyLinked, "already linked")
	}
	if a.IsLinked() {
		return reconcile.Skipped(externalID, accountID, reconcile.ReasonAccountLinkedElsewhere,
			"account is already linked to a different external id")
	}

	if existing, err := s.accounts.FindByLinkedExternalID(ctx, externalID); err == nil && existing.ID != accountID {
		return reconcile.Skipped(externalID, accountID, reconcile.ReasonExternalLinkedElsewhere,
			"external customer is already linked to a different account")
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return reconcile.Failed(externalID, accountID, reconcile.ReasonStorageError, err.Error())
	}

	if err := a.LinkTo(snapshotFrom(customer)); err != nil {
		return reconcile.Skipped(externalID, accountID, reconcile.ReasonAccountLinkedElsewhere, err.Error())
	}

	if err := s.accounts.Save(ctx, a); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			// The unique index caught a concurrent link for the same
			// external id; report it the same way as the pre-check.
			return reconcile.Skipped(externalID, accountID, reconcile.ReasonExternalLinkedElsewhere,
				"external customer is already linked to a different account")
		}
		return reconcile.Failed(externalID, accountID, reconcile.ReasonStorageError, err.Error())
	}

	s.storeExtractedAttributes(ctx, customer)
	s.publishEvents(ctx, a)

	result := reconcile.Linked(externalID, accountID)

	// Best-effort write back. The local link already succeeded, so a
	// remote failure is recorded on the result and left to the next
	// sync pass rather than rolled back.
	if a.IsActive() && !customer.Verified {
		verified := true
		if _, err := s.gateway.UpdateCustomer(ctx, externalID, commerce.UpdateCustomerInput{Verified: &verified}); err != nil {
			s.logger.Warn("remote verified flag update failed after link",
				zap.Int64("external_id", externalID),
				zap.String("account_id", accountID.String()),
				zap.Error(err))
			result.RemoteWriteError = err.Error()
		}
	}

	s.logger.Info("account linked to external customer",
		zap.Int64("external_id", externalID),
		zap.String("account_id", accountID.String()))

	return result
}

// PullSync overwrites the linked account's shadow fields with the
// current remote state. Returns shared.ErrNotFound when no account is
// linked to the external id.
func (s *Service) PullSync(ctx context.Context, externalID int64) (*reconcile.SyncResult, error) {
	a, err := s.accounts.FindByLinkedExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}

	customer, err := s.gateway.GetCustomer(ctx, externalID)
	if err != nil {
		return nil, err
	}

	if err := a.ApplyRemoteState(snapshotFrom(customer)); err != nil {
		return nil, err
	}
	if err := s.accounts.Save(ctx, a); err != nil {
		return nil, err
	}

	s.storeExtractedAttributes(ctx, customer)
	s.publishEvents(ctx, a)

	s.logger.Info("shadow fields synced from remote",
		zap.Int64("external_id", externalID),
		zap.String("account_id", a.ID.String()))

	return &reconcile.SyncResult{
		ExternalID: externalID,
		AccountID:  a.ID,
		Synced:     true,
	}, nil
}

// ActivateAccount activates a pending account and propagates the
// verified flag to the linked external customer. The remote write is
// best-effort; its failure is reported on the result, not as an error.
func (s *Service) ActivateAccount(ctx context.Context, accountID uuid.UUID) (*AccountResponse, error) {
	a, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := a.Activate(); err != nil {
		return nil, err
	}
	if err := s.accounts.Save(ctx, a); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, a)

	resp := toAccountResponse(a)
	if a.IsLinked() {
		verified := true
		if _, err := s.gateway.UpdateCustomer(ctx, *a.LinkedExternalID, commerce.UpdateCustomerInput{Verified: &verified}); err != nil {
			s.logger.Warn("remote verified flag update failed after activation",
				zap.Int64("external_id", *a.LinkedExternalID),
				zap.String("account_id", accountID.String()),
				zap.Error(err))
			resp.RemoteSyncError = err.Error()
		}
	}
	return resp, nil
}

// ChangeCustomerNumber updates the account's customer number and
// propagates it to the linked external customer's note. The note is
// recomposed from the structured attribute store so the company name
// survives the write.
func (s *Service) ChangeCustomerNumber(ctx context.Context, accountID uuid.UUID, customerNumber string) (*AccountResponse, error) {
	a, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := a.SetCustomerNumber(customerNumber); err != nil {
		return nil, err
	}
	if err := s.accounts.Save(ctx, a); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, a)

	resp := toAccountResponse(a)
	if !a.IsLinked() {
		return resp, nil
	}

	externalID := *a.LinkedExternalID
	if attr, err := account.NewCustomerAttribute(externalID, account.AttributeCustomerNumber, customerNumber); err == nil {
		if err := s.attributes.Upsert(ctx, attr); err != nil {
			s.logger.Warn("customer number attribute write failed",
				zap.Int64("external_id", externalID),
				zap.Error(err))
		}
	}

	note := s.composeNote(ctx, externalID, customerNumber)
	if _, err := s.gateway.UpdateCustomer(ctx, externalID, commerce.UpdateCustomerInput{Note: &note}); err != nil {
		s.logger.Warn("remote note update failed",
			zap.Int64("external_id", externalID),
			zap.String("account_id", accountID.String()),
			zap.Error(err))
		resp.RemoteSyncError = err.Error()
	}
	return resp, nil
}

// EnsureExternalCustomer makes sure an account has an external
// counterpart, creating one on the platform when neither an email match
// nor an existing link is found, then links it.
func (s *Service) EnsureExternalCustomer(ctx context.Context, accountID uuid.UUID) *reconcile.LinkResult {
	a, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return reconcile.Failed(0, accountID, reconcile.ReasonAccountNotFound, "account not found")
		}
		return reconcile.Failed(0, accountID, reconcile.ReasonStorageError, err.Error())
	}

	if a.IsLinked() {
		return reconcile.Skipped(*a.LinkedExternalID, accountID, reconcile.ReasonAlreadyLinked, "already linked")
	}

	customer, err := s.gateway.GetCustomerByEmail(ctx, a.Email)
	if errors.Is(err, commerce.ErrCustomerNotFound) {
		customer, err = s.gateway.CreateCustomer(ctx, commerce.CreateCustomerInput{
			Email:     a.Email,
			FirstName: a.DisplayName,
			Note:      commerce.ComposeNote(a.CustomerNumber, ""),
		})
	}
	if err != nil {
		return reconcile.Failed(0, accountID, reconcile.ReasonRemoteUnavailable, err.Error())
	}

	return s.LinkCustomer(ctx, customer.ID, accountID)
}

// Unlink severs an account's link and drops the stored attributes for
// the external customer. The remote side is left untouched, so a
// mistaken unlink is recoverable by linking again.
func (s *Service) Unlink(ctx context.Context, accountID uuid.UUID) (*AccountResponse, error) {
	a, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	externalID, err := a.Unlink()
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Save(ctx, a); err != nil {
		return nil, err
	}

	if err := s.attributes.DeleteByExternalID(ctx, externalID); err != nil {
		s.logger.Warn("attribute cleanup failed on unlink",
			zap.Int64("external_id", externalID),
			zap.String("account_id", accountID.String()),
			zap.Error(err))
	}

	s.publishEvents(ctx, a)

	s.logger.Info("account unlinked from external customer",
		zap.Int64("external_id", externalID),
		zap.String("account_id", accountID.String()))

	return toAccountResponse(a), nil
}

// LinkCandidate is one rankable account for a pending link decision
type LinkCandidate struct {
	AccountID uuid.UUID          `json:"account_id"`
	Email     string             `json:"email"`
	Strategy  reconcile.Strategy `json:"strategy"`
}

// CandidatesResult lists the accounts an external customer could be
// linked to, for the operator working through the manual-review queue
type CandidatesResult struct {
	ExternalID    int64           `json:"external_id"`
	LinkedAccount *uuid.UUID      `json:"linked_account_id,omitempty"`
	Candidates    []LinkCandidate `json:"candidates"`
	ManualReview  bool            `json:"manual_review"`
}

// LinkCandidates fetches the external customer and ranks the portal
// accounts it could be linked to, using the same matching rules as the
// bulk job but with targeted lookups instead of a full account scan.
func (s *Service) LinkCandidates(ctx context.Context, externalID int64) (*CandidatesResult, error) {
	customer, err := s.gateway.GetCustomer(ctx, externalID)
	if err != nil {
		if errors.Is(err, commerce.ErrCustomerNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	seen := make(map[uuid.UUID]bool)
	var pool []*account.Account
	add := func(list ...*account.Account) {
		for _, a := range list {
			if a == nil || seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			pool = append(pool, a)
		}
	}

	if linked, err := s.accounts.FindByLinkedExternalID(ctx, externalID); err == nil {
		add(linked)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	if customer.Email != "" {
		if byEmail, err := s.accounts.FindByEmail(ctx, customer.Email); err == nil {
			add(byEmail)
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	if number := customer.CustomerNumber(); number != "" {
		byNumber, err := s.accounts.FindByCustomerNumber(ctx, number)
		if err != nil {
			return nil, err
		}
		add(byNumber...)
	}

	match := reconcile.FindLinkCandidates(customer, pool)

	result := &CandidatesResult{
		ExternalID:   externalID,
		ManualReview: match.RequiresManualReview(),
	}
	if match.AlreadyLinked != nil {
		id := match.AlreadyLinked.ID
		result.LinkedAccount = &id
	}
	for _, c := range match.Candidates {
		result.Candidates = append(result.Candidates, LinkCandidate{
			AccountID: c.Account.ID,
			Email:     c.Account.Email,
			Strategy:  c.Strategy,
		})
	}
	return result, nil
}

// composeNote rebuilds the note content from stored attributes,
// falling back to only the customer number when no attributes exist
func (s *Service) composeNote(ctx context.Context, externalID int64, customerNumber string) string {
	companyName := ""
	if attr, err := s.attributes.Find(ctx, externalID, account.AttributeCompanyName); err == nil {
		companyName = attr.Value
	}
	return commerce.ComposeNote(customerNumber, companyName)
}

// storeExtractedAttributes seeds note-derived attributes into the
// structured store. Extraction is a fallback for legacy notes; the
// store is authoritative once populated, so keys that already exist
// are never overwritten here. Failures are logged only.
func (s *Service) storeExtractedAttributes(ctx context.Context, customer *commerce.Customer) {
	seed := func(key, value string) {
		if value == "" {
			return
		}
		if _, err := s.attributes.Find(ctx, customer.ID, key); err == nil {
			return
		} else if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("attribute lookup failed",
				zap.Int64("external_id", customer.ID),
				zap.String("key", key),
				zap.Error(err))
			return
		}
		attr, err := account.NewCustomerAttribute(customer.ID, key, value)
		if err != nil {
			return
		}
		if err := s.attributes.Upsert(ctx, attr); err != nil {
			s.logger.Warn("attribute write failed",
				zap.Int64("external_id", customer.ID),
				zap.String("key", key),
				zap.Error(err))
		}
	}
	seed(account.AttributeCustomerNumber, customer.CustomerNumber())
	seed(account.AttributeCompanyName, customer.CompanyName())
}

// publishEvents publishes the aggregate's pending domain events
func (s *Service) publishEvents(ctx context.Context, a *account.Account) {
	for _, e := range a.GetDomainEvents() {
		if err := s.eventBus.Publish(ctx, e); err != nil {
			s.logger.Warn("event publish failed",
				zap.String("event_type", e.EventType()),
				zap.Error(err))
		}
	}
	a.ClearDomainEvents()
}

// snapshotFrom maps a fetched customer onto the account's shadow fields
func snapshotFrom(c *commerce.Customer) account.RemoteSnapshot {
	return account.RemoteSnapshot{
		ExternalID:     c.ID,
		Phone:          c.Phone,
		Address:        c.DefaultAddress.Format(),
		Verified:       c.Verified,
		MarketingOptIn: c.MarketingOptIn,
		Tags:           c.Tags,
		Note:           c.Note,
	}
}
