// internal/server/seed.go
package server

import (
	"context"
	"fmt"

	"kulibrary/internal/domain"
)

// demoBook mirrors the titles the demo front end expects.
type demoBook struct {
	isbn   string
	title  string
	author string
	year   int
	copies int
}

// Seed provisions demo accounts and a small catalog through the regular
// services, so fixture data passes the same validation as live requests.
// Meant for the memory store; seeding twice would fail on the duplicate
// emails.
func (s *Server) Seed(ctx context.Context) error {
	users := []struct {
		email, name, password, role string
	}{
		{"admin@kulibrary.edu.np", "Library Admin", "admin-demo-pass", domain.RoleAdmin},
		{"staff@kulibrary.edu.np", "Front Desk", "staff-demo-pass", domain.RoleStaff},
		{"john.smith@kulibrary.edu.np", "John Smith", "student-demo-pass", domain.RoleStudent},
		{"asha.rai@kulibrary.edu.np", "Asha Rai", "student-demo-pass", domain.RoleFaculty},
	}
	for _, u := range users {
		if _, err := s.Auth.Register(ctx, u.email, u.name, u.password, u.role); err != nil {
			return fmt.Errorf("seed user %s: %w", u.email, err)
		}
	}

	books := []demoBook{
		{"978-0078022159", "Database System Concepts", "Abraham Silberschatz, Henry F. Korth", 2019, 5},
		{"978-1449356262", "Graph Databases", "Ian Robinson, Jim Webber", 2015, 3},
		{"978-0132350884", "Clean Code", "Robert C. Martin", 2008, 4},
		{"978-0201633610", "Design Patterns", "Erich Gamma, Richard Helm", 1994, 2},
		{"978-0262033848", "Introduction to Algorithms", "Thomas H. Cormen", 2009, 6},
		{"978-1491950296", "Building Microservices", "Sam Newman", 2015, 2},
	}
	for _, b := range books {
		if _, err := s.Catalog.Add(ctx, b.isbn, b.title, b.author, b.year, b.copies); err != nil {
			return fmt.Errorf("seed book %s: %w", b.title, err)
		}
	}

	return nil
}
