// internal/catalog/implementation.go
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"kulibrary/internal/domain"
)

// service implements the Service interface.
type service struct {
	books domain.BookStore
}

// NewService creates a new catalog service instance.
func NewService(books domain.BookStore) Service {
	return &service{books: books}
}

func (s *service) List(ctx context.Context, query string) ([]*domain.Book, error) {
	books, err := s.books.ListBooks(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return books, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	return s.books.GetBook(ctx, id)
}

// Add creates a new title with all copies on the shelf.
func (s *service) Add(ctx context.Context, isbn, title, author string, publishedYear, totalCopies int) (*domain.Book, error) {
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", domain.ErrValidation)
	}
	if author == "" {
		return nil, fmt.Errorf("author is required: %w", domain.ErrValidation)
	}
	if totalCopies < 0 {
		return nil, fmt.Errorf("total copies must be non-negative: %w", domain.ErrValidation)
	}

	now := time.Now()
	book := &domain.Book{
		ID:            uuid.New(),
		ISBN:          isbn,
		Title:         title,
		Author:        author,
		PublishedYear: publishedYear,
		TotalCopies:   totalCopies,
		Available:     totalCopies,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.books.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return book, nil
}
