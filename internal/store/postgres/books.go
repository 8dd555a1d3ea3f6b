// internal/store/postgres/books.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"kulibrary/internal/domain"
)

func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, isbn, title, author, published_year, total_copies, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`, book.ID, book.ISBN, book.Title, book.Author, book.PublishedYear, book.TotalCopies, book.Available, book.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (s *Store) GetBook(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	book := &domain.Book{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, isbn, title, author, published_year, total_copies, available, created_at, updated_at
		FROM books
		WHERE id = $1
	`, id).Scan(&book.ID, &book.ISBN, &book.Title, &book.Author, &book.PublishedYear,
		&book.TotalCopies, &book.Available, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// ListBooks filters by plain case-insensitive substring over title, author
// and ISBN, ordered by title then ISBN for a reproducible listing.
func (s *Store) ListBooks(ctx context.Context, query string) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, isbn, title, author, published_year, total_copies, available, created_at, updated_at
		FROM books
		WHERE $1 = ''
		   OR title ILIKE '%' || $1 || '%'
		   OR author ILIKE '%' || $1 || '%'
		   OR isbn ILIKE '%' || $1 || '%'
		ORDER BY title ASC, isbn ASC
	`, query)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		book := &domain.Book{}
		if err := rows.Scan(&book.ID, &book.ISBN, &book.Title, &book.Author, &book.PublishedYear,
			&book.TotalCopies, &book.Available, &book.CreatedAt, &book.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return count, nil
}
