// internal/domain/errors.go
package domain

import "errors"

// Sentinel errors shared across the service and store layers. They are
// wrapped with context via fmt.Errorf("%w") on the way up and translated
// into HTTP responses with errors.Is in one place (internal/httpx).
var (
	// ErrValidation indicates a request was rejected before touching any
	// store: missing fields, malformed ids, disallowed values.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password. The two cases are deliberately indistinguishable so that
	// login responses do not reveal whether an account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionNotFound indicates the presented token matches no session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired indicates the session is past its validity window.
	ErrSessionExpired = errors.New("session expired")

	// ErrForbidden indicates the authenticated user lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the referenced book, loan or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken indicates a registration attempt with an email that is
	// already provisioned.
	ErrEmailTaken = errors.New("email already registered")

	// ErrNoCopies indicates a borrow attempt against a book with no
	// available copies. The availability check and decrement are a single
	// atomic operation, so concurrent borrows of the last copy surface
	// exactly one of these.
	ErrNoCopies = errors.New("no copies available")

	// ErrAlreadyReturned indicates a return of a loan that is already
	// returned. Double return is an error, not a no-op.
	ErrAlreadyReturned = errors.New("loan already returned")

	// ErrRenewalLimit indicates a renew attempt past the renewal cap.
	// The loan is left unchanged.
	ErrRenewalLimit = errors.New("renewal limit exceeded")

	// ErrRateLimited indicates too many authentication attempts.
	ErrRateLimited = errors.New("rate limit exceeded")
)
