// internal/ledger/implementation.go
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kulibrary/internal/domain"
)

// Config holds the lending policy.
type Config struct {
	// LoanPeriod is how long a borrow (and each renewal) lasts.
	LoanPeriod time.Duration
	// MaxRenewals caps renewals per loan.
	MaxRenewals int
}

// service implements the Service interface.
type service struct {
	store domain.Store
	cfg   Config
	now   func() time.Time
}

// NewService creates a new ledger service instance.
func NewService(store domain.Store, cfg Config) Service {
	if cfg.LoanPeriod <= 0 {
		cfg.LoanPeriod = 14 * 24 * time.Hour
	}
	if cfg.MaxRenewals <= 0 {
		cfg.MaxRenewals = domain.MaxRenewals
	}
	return &service{store: store, cfg: cfg, now: time.Now}
}

func (s *service) Borrow(ctx context.Context, bookID, userID uuid.UUID) (*domain.Loan, error) {
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("borrower: %w", err)
	}

	now := s.now()
	loan, err := s.store.Borrow(ctx, bookID, userID, now, now.Add(s.cfg.LoanPeriod))
	if err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *service) Return(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	return s.store.Return(ctx, loanID, s.now())
}

func (s *service) Renew(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	return s.store.Renew(ctx, loanID, s.cfg.LoanPeriod, s.cfg.MaxRenewals)
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.LoanView, error) {
	loans, err := s.store.ListLoansByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}

	now := s.now()
	views := make([]domain.LoanView, 0, len(loans))
	for _, loan := range loans {
		views = append(views, loan.View(now))
	}
	return views, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	totalBooks, err := s.store.CountBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}
	totalMembers, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}
	active, err := s.store.CountOpenLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("count active loans: %w", err)
	}
	overdue, err := s.store.CountOverdueLoans(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("count overdue loans: %w", err)
	}

	return &Stats{
		TotalBooks:   totalBooks,
		TotalMembers: totalMembers,
		ActiveLoans:  active,
		OverdueLoans: overdue,
	}, nil
}
