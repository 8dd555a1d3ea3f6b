// internal/ledger/property_test.go
package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"pgregory.net/rapid"

	"kulibrary/internal/domain"
	"kulibrary/internal/store/memory"
)

// Random walks over the loan state machine must preserve the ledger
// invariants: availability stays within [0, total], renewal counts stay
// at or below the cap, and failed transitions leave state unchanged.
func TestLedgerInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		st := memory.New()

		user := &domain.User{ID: uuid.New(), Email: "prop@ku.edu", Name: "Prop", Role: domain.RoleStudent}
		if err := st.CreateUser(ctx, user, &domain.Credential{UserID: user.ID}); err != nil {
			t.Fatalf("seed user: %v", err)
		}

		bookCount := rapid.IntRange(1, 3).Draw(t, "books")
		var bookIDs []uuid.UUID
		totals := map[uuid.UUID]int{}
		for i := 0; i < bookCount; i++ {
			book := &domain.Book{
				ID:          uuid.New(),
				Title:       "Book",
				Author:      "Author",
				TotalCopies: rapid.IntRange(0, 3).Draw(t, "copies"),
			}
			book.Available = book.TotalCopies
			if err := st.CreateBook(ctx, book); err != nil {
				t.Fatalf("seed book: %v", err)
			}
			bookIDs = append(bookIDs, book.ID)
			totals[book.ID] = book.TotalCopies
		}

		svc := &service{
			store: st,
			cfg:   Config{LoanPeriod: loanPeriod, MaxRenewals: 3},
			now:   time.Now,
		}

		var loanIDs []uuid.UUID
		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0: // borrow
				bookID := bookIDs[rapid.IntRange(0, len(bookIDs)-1).Draw(t, "book")]
				loan, err := svc.Borrow(ctx, bookID, user.ID)
				if err != nil && !errors.Is(err, domain.ErrNoCopies) {
					t.Fatalf("borrow: %v", err)
				}
				if err == nil {
					loanIDs = append(loanIDs, loan.ID)
				}
			case 1: // return
				if len(loanIDs) == 0 {
					continue
				}
				loanID := loanIDs[rapid.IntRange(0, len(loanIDs)-1).Draw(t, "loan")]
				_, err := svc.Return(ctx, loanID)
				if err != nil && !errors.Is(err, domain.ErrAlreadyReturned) {
					t.Fatalf("return: %v", err)
				}
			case 2: // renew
				if len(loanIDs) == 0 {
					continue
				}
				loanID := loanIDs[rapid.IntRange(0, len(loanIDs)-1).Draw(t, "loan")]
				_, err := svc.Renew(ctx, loanID)
				if err != nil && !errors.Is(err, domain.ErrRenewalLimit) && !errors.Is(err, domain.ErrAlreadyReturned) {
					t.Fatalf("renew: %v", err)
				}
			}

			for _, bookID := range bookIDs {
				book, err := st.GetBook(ctx, bookID)
				if err != nil {
					t.Fatalf("get book: %v", err)
				}
				if book.Available < 0 || book.Available > totals[bookID] {
					t.Fatalf("availability %d out of range [0, %d]", book.Available, totals[bookID])
				}
			}
			for _, loanID := range loanIDs {
				loan, err := st.GetLoan(ctx, loanID)
				if err != nil {
					t.Fatalf("get loan: %v", err)
				}
				if loan.RenewalCount > 3 {
					t.Fatalf("renewal count %d exceeds cap", loan.RenewalCount)
				}
				if loan.Status == domain.LoanReturned && loan.ReturnDate == nil {
					t.Fatalf("returned loan without return date")
				}
			}
		}
	})
}
