// internal/store/postgres/postgres.go

// Package postgres is the real-backend implementation of the data-source
// abstraction, on database/sql with the lib/pq driver. Loan transitions
// run inside transactions that re-validate their preconditions, so the
// availability check-and-decrement and the status checks are atomic.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"kulibrary/internal/domain"
)

// Store implements domain.Store against a postgres database.
type Store struct {
	db     *sql.DB
	tracer trace.Tracer
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{
		db:     db,
		tracer: otel.Tracer("kulibrary/store"),
	}
}

var _ domain.Store = (*Store)(nil)

// Open connects to postgres with pool settings suited to a small service
// and verifies the connection before returning.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
