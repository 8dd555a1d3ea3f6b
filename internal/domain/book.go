// internal/domain/book.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Book represents a title in the catalog. Available is the number of
// copies on the shelf right now; it only moves through loan transitions
// (borrow decrements, return increments) and always satisfies
// 0 <= Available <= TotalCopies.
type Book struct {
	ID            uuid.UUID `json:"id"`
	ISBN          string    `json:"isbn"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	PublishedYear int       `json:"published_year,omitempty"`
	TotalCopies   int       `json:"total_copies"`
	Available     int       `json:"available"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
