// internal/auth/service.go
package auth

import (
	"context"
	"time"

	"kulibrary/internal/domain"
)

// LoginResult is what a successful login returns: the opaque session token,
// its expiry, the sanitized profile and the user's current loans so the
// dashboard can render without a second round trip.
type LoginResult struct {
	Token        string            `json:"token"`
	ExpiresAt    time.Time         `json:"expires_at"`
	User         *domain.User      `json:"user"`
	CurrentLoans []domain.LoanView `json:"current_loans"`
}

// Service defines the interface for the auth gateway.
type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, email, name, password, role string) (*domain.User, error)
	// Verify resolves a session token to its user, rejecting unknown and
	// expired tokens. Expiry is checked lazily here, not by a sweeper.
	Verify(ctx context.Context, token string) (*domain.User, error)
	// Logout invalidates the token. Calling it twice is not an error.
	Logout(ctx context.Context, token string) error
	ListMembers(ctx context.Context) ([]*domain.User, error)
}
