// internal/domain/loan.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Loan statuses. Only "active" and "returned" are stored; "overdue" is a
// view derived from the due date so that it can never drift out of sync
// with the clock.
const (
	LoanActive   = "active"
	LoanOverdue  = "overdue"
	LoanReturned = "returned"
)

// MaxRenewals is the default cap on renewals per loan.
const MaxRenewals = 3

// Loan records one book copy lent to one user. Loans are never deleted;
// returned loans are retained as history.
type Loan struct {
	ID           uuid.UUID  `json:"id"`
	BookID       uuid.UUID  `json:"book_id"`
	UserID       uuid.UUID  `json:"user_id"`
	LoanDate     time.Time  `json:"loan_date"`
	DueDate      time.Time  `json:"due_date"`
	ReturnDate   *time.Time `json:"return_date,omitempty"`
	Status       string     `json:"status"`
	RenewalCount int        `json:"renewal_count"`
}

// Open reports whether the loan still holds a copy (active or overdue).
func (l *Loan) Open() bool {
	return l.Status == LoanActive
}

// StatusView derives the status to display at the given instant: an active
// loan past its due date reads as overdue.
func (l *Loan) StatusView(now time.Time) string {
	if l.Status == LoanActive && now.After(l.DueDate) {
		return LoanOverdue
	}
	return l.Status
}

// DaysOverdue returns how many whole days the loan is past due at the given
// instant, zero if it is not overdue or already returned.
func (l *Loan) DaysOverdue(now time.Time) int {
	if l.Status != LoanActive || !now.After(l.DueDate) {
		return 0
	}
	return int(now.Sub(l.DueDate).Hours() / 24)
}

// LoanView is the wire shape of a loan: the stored record plus the derived
// status and overdue day count, computed once so every surface agrees.
type LoanView struct {
	Loan
	StatusView  string `json:"status_view"`
	DaysOverdue int    `json:"days_overdue"`
}

// View computes the derived fields for the given instant.
func (l *Loan) View(now time.Time) LoanView {
	return LoanView{
		Loan:        *l,
		StatusView:  l.StatusView(now),
		DaysOverdue: l.DaysOverdue(now),
	}
}
