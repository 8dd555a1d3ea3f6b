// internal/store/postgres/loans.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"kulibrary/internal/domain"
)

// Borrow atomically decrements the book's availability and inserts the
// loan. The conditional UPDATE is the availability check: zero rows means
// either the book is missing or its last copy is out, and the whole
// transaction rolls back.
func (s *Store) Borrow(ctx context.Context, bookID, userID uuid.UUID, loanDate, dueDate time.Time) (*domain.Loan, error) {
	ctx, span := s.tracer.Start(ctx, "store.borrow",
		trace.WithAttributes(
			attribute.String("book.id", bookID.String()),
			attribute.String("user.id", userID.String()),
		),
	)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE books
		SET available = available - 1, updated_at = $2
		WHERE id = $1 AND available > 0
	`, bookID, loanDate)
	if err != nil {
		return nil, fmt.Errorf("decrement availability: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)`, bookID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check book exists: %w", err)
		}
		if !exists {
			return nil, domain.ErrNotFound
		}
		span.SetAttributes(attribute.Bool("conflict.detected", true))
		return nil, domain.ErrNoCopies
	}

	loan := &domain.Loan{
		ID:           uuid.New(),
		BookID:       bookID,
		UserID:       userID,
		LoanDate:     loanDate,
		DueDate:      dueDate,
		Status:       domain.LoanActive,
		RenewalCount: 0,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO loans (id, book_id, user_id, loan_date, due_date, status, renewal_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, loan.ID, loan.BookID, loan.UserID, loan.LoanDate, loan.DueDate, loan.Status, loan.RenewalCount)
	if err != nil {
		return nil, fmt.Errorf("insert loan: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	span.SetAttributes(attribute.String("loan.id", loan.ID.String()))
	return loan, nil
}

// Return re-validates the loan status inside the transaction: the UPDATE
// only matches an open loan, so a second return of the same loan finds
// zero rows and fails with ErrAlreadyReturned.
func (s *Store) Return(ctx context.Context, loanID uuid.UUID, returnDate time.Time) (*domain.Loan, error) {
	ctx, span := s.tracer.Start(ctx, "store.return",
		trace.WithAttributes(attribute.String("loan.id", loanID.String())),
	)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	loan := &domain.Loan{}
	err = tx.QueryRowContext(ctx, `
		UPDATE loans
		SET status = $2, return_date = $3
		WHERE id = $1 AND status = $4
		RETURNING id, book_id, user_id, loan_date, due_date, return_date, status, renewal_count
	`, loanID, domain.LoanReturned, returnDate, domain.LoanActive).Scan(
		&loan.ID, &loan.BookID, &loan.UserID, &loan.LoanDate, &loan.DueDate,
		&loan.ReturnDate, &loan.Status, &loan.RenewalCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.classifyClosedLoan(ctx, tx, loanID)
		}
		return nil, fmt.Errorf("mark returned: %w", err)
	}

	// Release the copy, never exceeding the total.
	_, err = tx.ExecContext(ctx, `
		UPDATE books
		SET available = LEAST(total_copies, available + 1), updated_at = $2
		WHERE id = $1
	`, loan.BookID, returnDate)
	if err != nil {
		return nil, fmt.Errorf("increment availability: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return loan, nil
}

// Renew extends the due date and bumps the renewal count in one statement
// guarded by both preconditions; which one failed is sorted out only after
// the UPDATE matched nothing.
func (s *Store) Renew(ctx context.Context, loanID uuid.UUID, extendBy time.Duration, maxRenewals int) (*domain.Loan, error) {
	ctx, span := s.tracer.Start(ctx, "store.renew",
		trace.WithAttributes(attribute.String("loan.id", loanID.String())),
	)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	loan := &domain.Loan{}
	err = tx.QueryRowContext(ctx, `
		UPDATE loans
		SET due_date = due_date + make_interval(secs => $2), renewal_count = renewal_count + 1
		WHERE id = $1 AND status = $3 AND renewal_count < $4
		RETURNING id, book_id, user_id, loan_date, due_date, return_date, status, renewal_count
	`, loanID, extendBy.Seconds(), domain.LoanActive, maxRenewals).Scan(
		&loan.ID, &loan.BookID, &loan.UserID, &loan.LoanDate, &loan.DueDate,
		&loan.ReturnDate, &loan.Status, &loan.RenewalCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			current, getErr := s.getLoanTx(ctx, tx, loanID)
			if getErr != nil {
				return nil, getErr
			}
			if current.Status == domain.LoanReturned {
				return nil, domain.ErrAlreadyReturned
			}
			span.SetAttributes(attribute.Bool("conflict.detected", true))
			return nil, domain.ErrRenewalLimit
		}
		return nil, fmt.Errorf("renew loan: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return loan, nil
}

func (s *Store) classifyClosedLoan(ctx context.Context, tx *sql.Tx, loanID uuid.UUID) error {
	loan, err := s.getLoanTx(ctx, tx, loanID)
	if err != nil {
		return err
	}
	if loan.Status == domain.LoanReturned {
		return domain.ErrAlreadyReturned
	}
	return fmt.Errorf("loan %s in unexpected status %q", loanID, loan.Status)
}

func (s *Store) getLoanTx(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Loan, error) {
	loan := &domain.Loan{}
	err := tx.QueryRowContext(ctx, `
		SELECT id, book_id, user_id, loan_date, due_date, return_date, status, renewal_count
		FROM loans
		WHERE id = $1
	`, id).Scan(&loan.ID, &loan.BookID, &loan.UserID, &loan.LoanDate, &loan.DueDate,
		&loan.ReturnDate, &loan.Status, &loan.RenewalCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get loan: %w", err)
	}
	return loan, nil
}

func (s *Store) GetLoan(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	loan := &domain.Loan{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, book_id, user_id, loan_date, due_date, return_date, status, renewal_count
		FROM loans
		WHERE id = $1
	`, id).Scan(&loan.ID, &loan.BookID, &loan.UserID, &loan.LoanDate, &loan.DueDate,
		&loan.ReturnDate, &loan.Status, &loan.RenewalCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get loan: %w", err)
	}
	return loan, nil
}

func (s *Store) ListLoansByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Loan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, book_id, user_id, loan_date, due_date, return_date, status, renewal_count
		FROM loans
		WHERE user_id = $1
		ORDER BY (status = 'active') DESC, loan_date DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var loans []*domain.Loan
	for rows.Next() {
		loan := &domain.Loan{}
		if err := rows.Scan(&loan.ID, &loan.BookID, &loan.UserID, &loan.LoanDate, &loan.DueDate,
			&loan.ReturnDate, &loan.Status, &loan.RenewalCount); err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

func (s *Store) CountOpenLoans(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM loans WHERE status = $1
	`, domain.LoanActive).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count open loans: %w", err)
	}
	return count, nil
}

func (s *Store) CountOverdueLoans(ctx context.Context, now time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM loans WHERE status = $1 AND due_date < $2
	`, domain.LoanActive, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count overdue loans: %w", err)
	}
	return count, nil
}
