package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/partnerportal/backend/internal/domain/account"
	"github.com/partnerportal/backend/internal/domain/commerce"
	"github.com/partnerportal/backend/internal/domain/reconcile"
	"github.com/partnerportal/backend/internal/domain/shared"
)

// BulkService runs the offline reconciliation job over the full
// customer base. Records are processed strictly one at a time with a
// fixed delay between link operations; the remote API's rate limit is
// the throughput ceiling.
type BulkService struct {
	service  *Service
	accounts account.Repository
	gateway  commerce.Gateway
	delay    time.Duration
	logger   *zap.Logger
}

// NewBulkService creates a new BulkService
func NewBulkService(service *Service, accounts account.Repository, gateway commerce.Gateway, delay time.Duration, logger *zap.Logger) *BulkService {
	return &BulkService{
		service:  service,
		accounts: accounts,
		gateway:  gateway,
		delay:    delay,
		logger:   logger,
	}
}

// Run matches every external customer against the portal accounts and
// links the best candidate. One record's failure never aborts the
// batch, and re-running is safe: already-linked records are skipped.
func (s *BulkService) Run(ctx context.Context) (*reconcile.Report, error) {
	customers, err := s.gateway.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}

	accounts, err := s.loadAllAccounts(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("bulk reconciliation started",
		zap.Int("customers", len(customers)),
		zap.Int("accounts", len(accounts)))

	report := reconcile.NewReport()
	for i := range customers {
		customer := &customers[i]

		if i > 0 {
			if err := s.pause(ctx); err != nil {
				report.Finish()
				return report, err
			}
		}

		match := reconcile.FindLinkCandidates(customer, accounts)
		switch {
		case match.AlreadyLinked != nil:
			report.Record(customer.Email, "", reconcile.Skipped(
				customer.ID, match.AlreadyLinked.ID, reconcile.ReasonAlreadyLinked, "already linked"))
		case match.RequiresManualReview():
			report.RecordManualReview(customer.ID, customer.Email, "no email and no customer number match")
		default:
			best := match.Best()
			result := s.service.LinkCustomer(ctx, customer.ID, best.Account.ID)
			report.Record(customer.Email, best.Strategy, result)

			if result.IsLinked() {
				// Keep the in-memory view current so later records see
				// this account as taken.
				externalID := customer.ID
				best.Account.LinkedExternalID = &externalID
			}
		}
	}

	report.Finish()
	s.logger.Info("bulk reconciliation finished",
		zap.Int("total", report.Total),
		zap.Int("linked", len(report.Linked)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("errors", len(report.Errors)),
		zap.Int("manual_review", len(report.ManualReview)))

	return report, nil
}

// EnsureMissing walks every unlinked account and makes sure it has an
// external counterpart, creating remote customers where none exist.
// The inverse direction of Run, paced the same way.
func (s *BulkService) EnsureMissing(ctx context.Context) (*reconcile.Report, error) {
	accounts, err := s.accounts.FindUnlinked(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("bulk ensure started", zap.Int("unlinked_accounts", len(accounts)))

	report := reconcile.NewReport()
	for i, a := range accounts {
		if i > 0 {
			if err := s.pause(ctx); err != nil {
				report.Finish()
				return report, err
			}
		}

		result := s.service.EnsureExternalCustomer(ctx, a.ID)
		report.Record(a.Email, reconcile.StrategyEmail, result)
	}

	report.Finish()
	s.logger.Info("bulk ensure finished",
		zap.Int("total", report.Total),
		zap.Int("linked", len(report.Linked)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("errors", len(report.Errors)))

	return report, nil
}

// loadAllAccounts pages through the account store until exhausted
func (s *BulkService) loadAllAccounts(ctx context.Context) ([]*account.Account, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 200
	filter.OrderBy = "created_at"
	filter.OrderDir = "asc"

	var accounts []*account.Account
	for {
		page, err := s.accounts.FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, page.Items...)
		if filter.Page >= page.TotalPages {
			return accounts, nil
		}
		filter.Page++
	}
}

// pause waits out the inter-record delay, honoring cancellation
func (s *BulkService) pause(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
