// internal/ledger/implementation_test.go
package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kulibrary/internal/domain"
	"kulibrary/internal/store/memory"
)

const loanPeriod = 14 * 24 * time.Hour

type fixture struct {
	svc   *service
	store *memory.Store
	user  *domain.User
	book  *domain.Book
	now   time.Time
}

func newFixture(t *testing.T, copies int) *fixture {
	t.Helper()
	ctx := context.Background()
	st := memory.New()

	user := &domain.User{ID: uuid.New(), Email: "reader@ku.edu", Name: "Reader", Role: domain.RoleStudent, JoinedAt: time.Now()}
	require.NoError(t, st.CreateUser(ctx, user, &domain.Credential{UserID: user.ID}))

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	book := &domain.Book{
		ID: uuid.New(), ISBN: "978-0", Title: "Test Driven", Author: "Author",
		TotalCopies: copies, Available: copies, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, st.CreateBook(ctx, book))

	f := &fixture{store: st, user: user, book: book, now: now}
	f.svc = &service{
		store: st,
		cfg:   Config{LoanPeriod: loanPeriod, MaxRenewals: 3},
		now:   func() time.Time { return f.now },
	}
	return f
}

func (f *fixture) available(t *testing.T) int {
	t.Helper()
	book, err := f.store.GetBook(context.Background(), f.book.ID)
	require.NoError(t, err)
	return book.Available
}

func TestBorrow(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	loan, err := f.svc.Borrow(ctx, f.book.ID, f.user.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.LoanActive, loan.Status)
	assert.Equal(t, f.now, loan.LoanDate)
	assert.Equal(t, f.now.Add(loanPeriod), loan.DueDate)
	assert.Equal(t, 0, loan.RenewalCount)
	assert.Equal(t, 1, f.available(t))
}

func TestBorrowUnknownBookAndUser(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	_, err := f.svc.Borrow(ctx, uuid.New(), f.user.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.Borrow(ctx, f.book.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	// The failed borrow did not consume a copy.
	assert.Equal(t, 1, f.available(t))
}

func TestBorrowExhaustedStock(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	_, err := f.svc.Borrow(ctx, f.book.ID, f.user.ID)
	require.NoError(t, err)

	_, err = f.svc.Borrow(ctx, f.book.ID, f.user.ID)
	assert.ErrorIs(t, err, domain.ErrNoCopies)
	assert.Equal(t, 0, f.available(t))
}

// Two simultaneous borrows racing for the last copy: exactly one wins.
func TestConcurrentBorrowLastCopy(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Borrow(ctx, f.book.ID, f.user.ID)
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		default:
			require.ErrorIs(t, err, domain.ErrNoCopies)
			conflicts++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, conflicts)
	assert.Equal(t, 0, f.available(t))
}

func TestReturn(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	loan, err := f.svc.Borrow(ctx, f.book.ID, f.user.ID)
	require.NoError(t, err)
	require.Equal(t, 1, f.available(t))

	f.now = f.now.Add(72 * time.Hour)
	returned, err := f.svc.Return(ctx, loan.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.LoanReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, f.now, *returned.ReturnDate)
	assert.Equal(t, 2, f.available(t))
}

func TestDoubleReturnIsAnError(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	loan, err := f.svc.Borrow(ctx, f.book.ID, f.user.ID)
	require.NoError(t, err)

	_, err = f.svc.Return(ctx, loan.ID)
	require.NoError(t, err)

	_, err = f.svc.Return(ctx, loan.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyReturned)
	// Availability rose exactly once, not twice.
	assert.Equal(t, 2, f.available(t))

	_, err = f.svc.Return(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRenewExtendsAndCaps(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	loan, err := f.svc.Borrow(ctx, f.book.ID, f.user.ID)
	require.NoError(t, err)
	due := loan.DueDate

	for i := 1; i <= 3; i++ {
		renewed, err := f.svc.Renew(ctx, loan.ID)
		require.NoError(t, err)
		assert.Equal(t, i, renewed.RenewalCount)
		assert.Equal(t, due.Add(time.Duration(i)*loanPeriod), renewed.DueDate)
	}

	_, err = f.svc.Renew(ctx, loan.ID)
	assert.ErrorIs(t, err, domain.ErrRenewalLimit)

	// The failed renew left the loan untouched.
	current, err := f.store.GetLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, current.RenewalCount)
	assert.Equal(t, due.Add(3*loanPeriod), current.DueDate)
}

func TestRenewReturnedLoan(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	loan, err := f.svc.Borrow(ctx, f.book.ID, f.user.ID)
	require.NoError(t, err)
	_, err = f.svc.Return(ctx, loan.ID)
	require.NoError(t, err)

	_, err = f.svc.Renew(ctx, loan.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyReturned)
}

func TestListForUserDerivesOverdue(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	loan, err := f.svc.Borrow(ctx, f.book.ID, f.user.ID)
	require.NoError(t, err)

	// 16 days later the loan is 2 days past due but still stored active.
	f.now = f.now.Add(16 * 24 * time.Hour)
	views, err := f.svc.ListForUser(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)

	assert.Equal(t, loan.ID, views[0].ID)
	assert.Equal(t, domain.LoanActive, views[0].Status)
	assert.Equal(t, domain.LoanOverdue, views[0].StatusView)
	assert.Equal(t, 2, views[0].DaysOverdue)
}

func TestStats(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	first, err := f.svc.Borrow(ctx, f.book.ID, f.user.ID)
	require.NoError(t, err)
	_, err = f.svc.Borrow(ctx, f.book.ID, f.user.ID)
	require.NoError(t, err)
	_, err = f.svc.Return(ctx, first.ID)
	require.NoError(t, err)

	// Push one remaining loan past due.
	f.now = f.now.Add(15 * 24 * time.Hour)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalBooks)
	assert.Equal(t, 1, stats.TotalMembers)
	assert.Equal(t, 1, stats.ActiveLoans)
	assert.Equal(t, 1, stats.OverdueLoans)
}
