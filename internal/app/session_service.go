package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"colab/internal/domain"
)

var (
	// ErrInvalidSession covers malformed tokens, unknown session ids, and
	// secret mismatches. The cases are deliberately indistinguishable to the
	// caller so a failed lookup reveals nothing about which half of the
	// token was wrong.
	ErrInvalidSession = errors.New("invalid session")
)

const (
	// sessionMaxAge expires sessions by absolute age since creation.
	sessionMaxAge = 10 * 24 * time.Hour
	// sessionRefreshInterval throttles lastVerifiedAt writes: a session is
	// touched at most once per interval, not on every request.
	sessionRefreshInterval = time.Hour
)

// SessionWithToken is a freshly created session together with the composite
// bearer token. The token is returned exactly once; the secret half is never
// persisted or recoverable afterwards.
type SessionWithToken struct {
	domain.Session
	Token string
}

// SessionService issues, validates, and revokes session credentials.
type SessionService struct {
	sessions domain.SessionRepository
	now      func() time.Time
}

// NewSessionService creates a SessionService backed by the given repository.
func NewSessionService(sessions domain.SessionRepository) *SessionService {
	return &SessionService{sessions: sessions, now: time.Now}
}

// Create issues a new session for userID and returns it with its bearer
// token "id.secret".
func (s *SessionService) Create(ctx context.Context, userID string) (*SessionWithToken, error) {
	id, err := GenerateOpaqueID()
	if err != nil {
		return nil, err
	}
	secret, err := GenerateOpaqueID()
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &domain.Session{
		ID:             id,
		UserID:         userID,
		SecretHash:     HashSecret(secret),
		CreatedAt:      now,
		LastVerifiedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return &SessionWithToken{Session: *session, Token: id + "." + secret}, nil
}

// ValidateToken resolves a bearer token to its session. It fails closed with
// ErrInvalidSession on malformed tokens, unknown ids, secret mismatches, and
// expired sessions; storage failures propagate unchanged.
func (s *SessionService) ValidateToken(ctx context.Context, token string) (*domain.Session, error) {
	id, secret, ok := strings.Cut(token, ".")
	if !ok || id == "" || secret == "" {
		return nil, ErrInvalidSession
	}

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrInvalidSession
	}

	if !ConstantTimeEqual(session.SecretHash, HashSecret(secret)) {
		return nil, ErrInvalidSession
	}

	now := s.now()
	if now.Sub(session.CreatedAt) >= sessionMaxAge {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, ErrInvalidSession
	}

	if now.Sub(session.LastVerifiedAt) >= sessionRefreshInterval {
		session.LastVerifiedAt = now
		if err := s.sessions.UpdateLastVerifiedAt(ctx, session.ID, now); err != nil {
			return nil, err
		}
	}

	return session, nil
}

// Get looks a session up by id, expiring it by absolute age as a side
// effect of detection.
func (s *SessionService) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrInvalidSession
	}
	if s.now().Sub(session.CreatedAt) >= sessionMaxAge {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, ErrInvalidSession
	}
	return session, nil
}

// Delete removes a session. Deleting an unknown id is a no-op.
func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}
