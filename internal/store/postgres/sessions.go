// internal/store/postgres/sessions.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kulibrary/internal/domain"
)

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, issued_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, session.Token, session.UserID, session.IssuedAt, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	session := &domain.Session{}
	err := s.db.QueryRowContext(ctx, `
		SELECT token, user_id, issued_at, expires_at
		FROM sessions
		WHERE token = $1
	`, token).Scan(&session.Token, &session.UserID, &session.IssuedAt, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// DeleteSession removes the session row. Deleting a missing token succeeds;
// logout is idempotent.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
