package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore persists sessions in a single JSONB-backed table, so a
// server restart or a second replica can pick up an in-progress review.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the sessions table if it does not exist.
func (r *PostgresStore) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS review_sessions (
			id UUID PRIMARY KEY,
			state JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

// Get retrieves a session by its id.
func (r *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	query := `SELECT state FROM review_sessions WHERE id = $1`

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	s := &Session{}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}
	return s, nil
}

// Put inserts or replaces a session.
func (r *PostgresStore) Put(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}

	query := `
		INSERT INTO review_sessions (id, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET state = $2, updated_at = $4
	`

	_, err = r.db.ExecContext(ctx, query, s.ID, raw, s.CreatedAt, s.UpdatedAt)
	return err
}

// Delete removes a session.
func (r *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM review_sessions WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
