// internal/store/postgres/users.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"kulibrary/internal/domain"
)

// CreateUser inserts the profile and credential in one transaction.
func (s *Store) CreateUser(ctx context.Context, user *domain.User, cred *domain.Credential) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, department, phone, joined_at)
		VALUES ($1, LOWER($2), $3, $4, $5, $6, $7)
	`, user.ID, user.Email, user.Name, user.Role, user.Department, user.Phone, user.JoinedAt)
	if err != nil {
		// Unique violation on the email index means the account exists.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO credentials (user_id, password_hash, salt)
		VALUES ($1, $2, $3)
	`, cred.UserID, cred.PasswordHash, cred.Salt)
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}

	return tx.Commit()
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user := &domain.User{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, role, department, phone, joined_at
		FROM users
		WHERE id = $1
	`, id).Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.Department, &user.Phone, &user.JoinedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, *domain.Credential, error) {
	user := &domain.User{}
	cred := &domain.Credential{}
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.name, u.role, u.department, u.phone, u.joined_at,
		       c.password_hash, c.salt
		FROM users u
		JOIN credentials c ON c.user_id = u.id
		WHERE u.email = LOWER($1)
	`, email).Scan(
		&user.ID, &user.Email, &user.Name, &user.Role, &user.Department, &user.Phone, &user.JoinedAt,
		&cred.PasswordHash, &cred.Salt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get user by email: %w", err)
	}
	cred.UserID = user.ID
	return user, cred, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, name, role, department, phone, joined_at
		FROM users
		ORDER BY email ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user := &domain.User{}
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.Role, &user.Department, &user.Phone, &user.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
