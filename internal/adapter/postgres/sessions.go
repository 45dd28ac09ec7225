package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"colab/internal/domain"
)

// SessionRepo implements domain.SessionRepository.
type SessionRepo struct {
	sql *sql.DB
}

// Sessions returns the session repository.
func (d *DB) Sessions() *SessionRepo {
	return &SessionRepo{sql: d.sql}
}

// Create inserts a new session row.
func (r *SessionRepo) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.sql.ExecContext(ctx,
		"INSERT INTO sessions(id, user_id, secret_hash, created_at, last_verified_at) VALUES($1, $2, $3, $4, $5);",
		s.ID, s.UserID, s.SecretHash, s.CreatedAt.UTC(), s.LastVerifiedAt.UTC())
	return err
}

// GetByID returns the session with the given public id, or nil when absent.
func (r *SessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.sql.QueryRowContext(ctx,
		"SELECT id, user_id, secret_hash, created_at, last_verified_at FROM sessions WHERE id=$1;", id)

	var s domain.Session
	if err := row.Scan(&s.ID, &s.UserID, &s.SecretHash, &s.CreatedAt, &s.LastVerifiedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// UpdateLastVerifiedAt records a successful token verification.
func (r *SessionRepo) UpdateLastVerifiedAt(ctx context.Context, id string, t time.Time) error {
	_, err := r.sql.ExecContext(ctx,
		"UPDATE sessions SET last_verified_at=$2 WHERE id=$1;", id, t.UTC())
	return err
}

// Delete removes a session. Deleting an absent id is not an error.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.sql.ExecContext(ctx, "DELETE FROM sessions WHERE id=$1;", id)
	return err
}
