package reconcile

import (
	"strings"

	"github.com/partnerportal/backend/internal/domain/account"
	"github.com/partnerportal/backend/internal/domain/commerce"
)

// Strategy identifies how a candidate account was matched
type Strategy string

const (
	StrategyEmail          Strategy = "email"
	StrategyCustomerNumber Strategy = "customer_number"
)

// Candidate pairs a portal account with the strategy that matched it
type Candidate struct {
	Account  *account.Account
	Strategy Strategy
}

// MatchResult is the outcome of candidate discovery for one external customer
type MatchResult struct {
	// AlreadyLinked is set when some account already carries this
	// external id. When set, Candidates is empty; the caller needs
	// idempotency handling, not matching.
	AlreadyLinked *account.Account
	Candidates    []Candidate
}

// RequiresManualReview reports whether the external customer cannot be
// matched automatically. Such records must be surfaced to an operator,
// not dropped.
func (m *MatchResult) RequiresManualReview() bool {
	return m.AlreadyLinked == nil && len(m.Candidates) == 0
}

// Best returns the highest-priority candidate, or nil
func (m *MatchResult) Best() *Candidate {
	if len(m.Candidates) == 0 {
		return nil
	}
	return &m.Candidates[0]
}

// FindLinkCandidates decides whether a link already exists for the given
// external customer and, if not, ranks candidate accounts. Email matches
// rank ahead of customer-number matches, and an account matching by both
// strategies appears once under the email strategy.
func FindLinkCandidates(customer *commerce.Customer, accounts []*account.Account) *MatchResult {
	result := &MatchResult{}

	for _, a := range accounts {
		if a.IsLinkedTo(customer.ID) {
			result.AlreadyLinked = a
			return result
		}
	}

	seen := make(map[string]bool)

	if customer.Email != "" {
		for _, a := range accounts {
			if a.EmailEquals(customer.Email) {
				result.Candidates = append(result.Candidates, Candidate{Account: a, Strategy: StrategyEmail})
				seen[a.ID.String()] = true
			}
		}
	}

	customerNumber := commerce.ExtractCustomerNumber(customer.Note)
	if customerNumber != "" {
		for _, a := range accounts {
			if seen[a.ID.String()] {
				continue
			}
			if a.CustomerNumber != "" && strings.EqualFold(a.CustomerNumber, customerNumber) {
				result.Candidates = append(result.Candidates, Candidate{Account: a, Strategy: StrategyCustomerNumber})
				seen[a.ID.String()] = true
			}
		}
	}

	return result
}
