// internal/ledger/service.go
package ledger

import (
	"context"

	"github.com/google/uuid"

	"kulibrary/internal/domain"
)

// Stats summarizes the ledger for the dashboard.
type Stats struct {
	TotalBooks   int `json:"total_books"`
	TotalMembers int `json:"total_members"`
	ActiveLoans  int `json:"active_loans"`
	OverdueLoans int `json:"overdue_loans"`
}

// Service defines the interface for the loan ledger.
type Service interface {
	// Borrow lends one copy of the book to the user. Fails with
	// domain.ErrNoCopies when nothing is available; the availability check
	// and decrement are atomic, so the last copy goes to exactly one
	// concurrent caller.
	Borrow(ctx context.Context, bookID, userID uuid.UUID) (*domain.Loan, error)

	// Return closes the loan and releases the copy. A second return of the
	// same loan fails with domain.ErrAlreadyReturned.
	Return(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error)

	// Renew extends the due date by one loan period, up to the renewal
	// cap; at the cap it fails with domain.ErrRenewalLimit and the loan is
	// unchanged.
	Renew(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error)

	// ListForUser returns the user's loans with the derived overdue view.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.LoanView, error)

	Stats(ctx context.Context) (*Stats, error)
}
