// internal/auth/implementation.go
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"kulibrary/internal/domain"
)

// Config holds the auth policy knobs.
type Config struct {
	// SessionTTL is the fixed validity window of a session token.
	SessionTTL time.Duration
	// EmailDomain, when non-empty, restricts accounts to addresses ending
	// in "@<EmailDomain>". Empty disables the institutional check.
	EmailDomain string
	// AttemptsPerMinute throttles login and registration attempts.
	AttemptsPerMinute int
}

// service implements the Service interface.
type service struct {
	store       domain.Store
	cfg         Config
	rateLimiter *rate.Limiter
}

// NewService creates a new auth service instance.
func NewService(store domain.Store, cfg Config) Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.AttemptsPerMinute <= 0 {
		cfg.AttemptsPerMinute = 30
	}
	return &service{
		store:       store,
		cfg:         cfg,
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.AttemptsPerMinute)), cfg.AttemptsPerMinute),
	}
}

// Login verifies credentials and issues a fresh session token. An unknown
// email and a wrong password produce the same error so the response does
// not reveal whether the account exists.
func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if !s.rateLimiter.Allow() {
		return nil, domain.ErrRateLimited
	}
	if err := s.validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("password is required: %w", domain.ErrValidation)
	}

	user, cred, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := verifyPassword(password, cred.Salt, cred.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		Token:     token,
		UserID:    user.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	loans, err := s.store.ListLoansByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list current loans: %w", err)
	}
	views := make([]domain.LoanView, 0, len(loans))
	for _, loan := range loans {
		if loan.Open() {
			views = append(views, loan.View(now))
		}
	}

	return &LoginResult{
		Token:        token,
		ExpiresAt:    session.ExpiresAt,
		User:         user,
		CurrentLoans: views,
	}, nil
}

// Register provisions a new account. An empty role defaults to student.
func (s *service) Register(ctx context.Context, email, name, password, role string) (*domain.User, error) {
	if !s.rateLimiter.Allow() {
		return nil, domain.ErrRateLimited
	}
	if err := s.validateEmail(email); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", domain.ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters: %w", domain.ErrValidation)
	}
	if role == "" {
		role = domain.RoleStudent
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("unknown role %q: %w", role, domain.ErrValidation)
	}

	passwordHash, salt, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:       uuid.New(),
		Email:    strings.ToLower(email),
		Name:     name,
		Role:     role,
		JoinedAt: time.Now(),
	}
	cred := &domain.Credential{
		UserID:       user.ID,
		PasswordHash: passwordHash,
		Salt:         salt,
	}

	if err := s.store.CreateUser(ctx, user, cred); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Verify resolves the token to its user, dropping expired sessions on the
// way out.
func (s *service) Verify(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrSessionNotFound
	}

	session, err := s.store.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		// Best-effort cleanup; the expiry check above already rejected it.
		_ = s.store.DeleteSession(ctx, token)
		return nil, domain.ErrSessionExpired
	}

	user, err := s.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("session user: %w", err)
	}
	return user, nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

func (s *service) ListMembers(ctx context.Context) ([]*domain.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *service) validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required: %w", domain.ErrValidation)
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("malformed email: %w", domain.ErrValidation)
	}
	if s.cfg.EmailDomain != "" && !strings.HasSuffix(strings.ToLower(email), "@"+strings.ToLower(s.cfg.EmailDomain)) {
		return fmt.Errorf("email must belong to %s: %w", s.cfg.EmailDomain, domain.ErrValidation)
	}
	return nil
}

// newToken returns 32 random bytes hex encoded: unique, unguessable and
// opaque to the client.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
