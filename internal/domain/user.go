// internal/domain/user.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Roles a library account can hold. Students are the default at
// registration; staff and admin accounts can also manage the catalog.
const (
	RoleStudent = "student"
	RoleStaff   = "staff"
	RoleFaculty = "faculty"
	RoleAdmin   = "admin"
)

// ValidRole reports whether the given role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleStaff, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

// User represents a library account. Password material never leaves the
// credential store; the profile returned to clients is exactly this struct.
type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	Department string    `json:"department,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	JoinedAt   time.Time `json:"joined_at"`
}

// CanManageCatalog reports whether the user may add books and list members.
func (u *User) CanManageCatalog() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}

// Credential holds a user's login secret, stored separately from the profile.
type Credential struct {
	UserID       uuid.UUID `json:"-"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
}

// Session is a server-side login session keyed by an opaque token.
// Expiry is evaluated lazily whenever the token is presented.
type Session struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its validity window.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
