package domain

import (
	"context"
	"time"
)

// Session represents an active user session. Only the public id and the
// digest of the private secret are ever persisted; the composite bearer
// token handed to the client is "id.secret".
type Session struct {
	ID             string
	UserID         string
	SecretHash     []byte
	CreatedAt      time.Time
	LastVerifiedAt time.Time
}

// SessionRepository defines the port for session persistence operations.
type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	UpdateLastVerifiedAt(ctx context.Context, id string, t time.Time) error
	Delete(ctx context.Context, id string) error
}
