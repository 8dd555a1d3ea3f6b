// internal/domain/repository.go
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore persists library accounts and their credentials.
type UserStore interface {
	CreateUser(ctx context.Context, user *User, cred *Credential) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	// GetUserByEmail returns the user together with its credential, or
	// ErrNotFound. Case of the email is not significant.
	GetUserByEmail(ctx context.Context, email string) (*User, *Credential, error)
	ListUsers(ctx context.Context) ([]*User, error)
	CountUsers(ctx context.Context) (int, error)
}

// SessionStore persists login sessions keyed by opaque token.
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	// DeleteSession removes the session. Deleting a token that does not
	// exist is not an error; logout is idempotent.
	DeleteSession(ctx context.Context, token string) error
}

// BookStore persists the catalog.
type BookStore interface {
	CreateBook(ctx context.Context, book *Book) error
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
	// ListBooks returns the catalog ordered by title then ISBN. A non-empty
	// query filters to books whose title, author or ISBN contains it,
	// case-insensitively.
	ListBooks(ctx context.Context, query string) ([]*Book, error)
	CountBooks(ctx context.Context) (int, error)
}

// LoanStore persists loans and executes the loan state transitions. Each
// transition is atomic with respect to its preconditions: the availability
// check-and-decrement of Borrow, the status re-validation of Return, and
// the cap check of Renew all happen inside the same atomic unit as the
// resulting write.
type LoanStore interface {
	// Borrow decrements the book's availability and creates an active loan
	// in one atomic step. Returns ErrNotFound if the book does not exist
	// and ErrNoCopies if nothing is available.
	Borrow(ctx context.Context, bookID, userID uuid.UUID, loanDate, dueDate time.Time) (*Loan, error)

	// Return marks the loan returned and releases the copy, capped at the
	// book's total. Returns ErrAlreadyReturned on a second call.
	Return(ctx context.Context, loanID uuid.UUID, returnDate time.Time) (*Loan, error)

	// Renew extends the due date by extendBy and increments the renewal
	// count, failing with ErrRenewalLimit at maxRenewals without touching
	// the loan.
	Renew(ctx context.Context, loanID uuid.UUID, extendBy time.Duration, maxRenewals int) (*Loan, error)

	GetLoan(ctx context.Context, id uuid.UUID) (*Loan, error)
	// ListLoansByUser returns all of the user's loans, open loans first,
	// most recent first within each group.
	ListLoansByUser(ctx context.Context, userID uuid.UUID) ([]*Loan, error)
	CountOpenLoans(ctx context.Context) (int, error)
	CountOverdueLoans(ctx context.Context, now time.Time) (int, error)
}

// Store is the data-source abstraction the whole service is wired against.
// One implementation is selected at startup: postgres for a real backend,
// memory for the demo fixture mode and tests.
type Store interface {
	UserStore
	SessionStore
	BookStore
	LoanStore
}
