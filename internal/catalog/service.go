// internal/catalog/service.go
package catalog

import (
	"context"

	"github.com/google/uuid"

	"kulibrary/internal/domain"
)

// Service defines the interface for the catalog service.
type Service interface {
	// List returns the catalog ordered by title. A non-empty query filters
	// by case-insensitive substring over title, author and ISBN.
	List(ctx context.Context, query string) ([]*domain.Book, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	Add(ctx context.Context, isbn, title, author string, publishedYear, totalCopies int) (*domain.Book, error)
}
