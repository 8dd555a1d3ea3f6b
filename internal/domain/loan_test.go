// internal/domain/loan_test.go
package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLoanStatusView(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	active := &Loan{Status: LoanActive, DueDate: now.Add(48 * time.Hour)}
	assert.Equal(t, LoanActive, active.StatusView(now))
	assert.Equal(t, 0, active.DaysOverdue(now))

	pastDue := &Loan{Status: LoanActive, DueDate: now.Add(-72 * time.Hour)}
	assert.Equal(t, LoanOverdue, pastDue.StatusView(now))
	assert.Equal(t, 3, pastDue.DaysOverdue(now))

	// A returned loan never reads as overdue, however old its due date.
	returned := &Loan{Status: LoanReturned, DueDate: now.Add(-72 * time.Hour)}
	assert.Equal(t, LoanReturned, returned.StatusView(now))
	assert.Equal(t, 0, returned.DaysOverdue(now))
}

func TestLoanDaysOverdueRoundsDown(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	loan := &Loan{Status: LoanActive, DueDate: now.Add(-36 * time.Hour)}
	assert.Equal(t, 1, loan.DaysOverdue(now))

	justDue := &Loan{Status: LoanActive, DueDate: now.Add(-time.Minute)}
	assert.Equal(t, LoanOverdue, justDue.StatusView(now))
	assert.Equal(t, 0, justDue.DaysOverdue(now))
}

func TestLoanView(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	loan := &Loan{
		ID:      uuid.New(),
		Status:  LoanActive,
		DueDate: now.Add(-24 * time.Hour),
	}

	view := loan.View(now)
	assert.Equal(t, loan.ID, view.ID)
	assert.Equal(t, LoanOverdue, view.StatusView)
	assert.Equal(t, 1, view.DaysOverdue)
	// The stored status is untouched; overdue is derived only.
	assert.Equal(t, LoanActive, view.Status)
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	session := &Session{IssuedAt: now, ExpiresAt: now.Add(24 * time.Hour)}

	assert.False(t, session.Expired(now))
	assert.False(t, session.Expired(now.Add(23*time.Hour)))
	assert.True(t, session.Expired(now.Add(25*time.Hour)))
}
