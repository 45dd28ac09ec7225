package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"colab/internal/domain"
)

type mockSessionRepo struct {
	createFn func(ctx context.Context, s *domain.Session) error
	getFn    func(ctx context.Context, id string) (*domain.Session, error)
	touchFn  func(ctx context.Context, id string, t time.Time) error
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	if m.createFn != nil {
		return m.createFn(ctx, s)
	}
	return nil
}

func (m *mockSessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockSessionRepo) UpdateLastVerifiedAt(ctx context.Context, id string, t time.Time) error {
	if m.touchFn != nil {
		return m.touchFn(ctx, id, t)
	}
	return nil
}

func (m *mockSessionRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func TestSessionCreateIssuesCompositeToken(t *testing.T) {
	var stored *domain.Session
	repo := &mockSessionRepo{
		createFn: func(ctx context.Context, s *domain.Session) error {
			stored = s
			return nil
		},
	}
	svc := NewSessionService(repo)

	session, err := svc.Create(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	id, secret, ok := strings.Cut(session.Token, ".")
	if !ok {
		t.Fatalf("token %q is not id.secret", session.Token)
	}
	if id != session.ID {
		t.Errorf("token id %q does not match session id %q", id, session.ID)
	}
	if stored == nil {
		t.Fatal("session was not persisted")
	}
	if !ConstantTimeEqual(stored.SecretHash, HashSecret(secret)) {
		t.Error("persisted hash does not match the token secret")
	}
	if strings.Contains(string(stored.SecretHash), secret) {
		t.Error("raw secret must not be persisted")
	}
}

func TestSessionValidateToken(t *testing.T) {
	svc := NewSessionService(&mockSessionRepo{})
	now := time.Now()
	svc.now = func() time.Time { return now }

	var store *domain.Session
	repo := &mockSessionRepo{
		createFn: func(ctx context.Context, s *domain.Session) error {
			cp := *s
			store = &cp
			return nil
		},
		getFn: func(ctx context.Context, id string) (*domain.Session, error) {
			if store != nil && store.ID == id {
				cp := *store
				return &cp, nil
			}
			return nil, nil
		},
	}
	svc.sessions = repo

	created, err := svc.Create(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.ValidateToken(context.Background(), created.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if got.UserID != "user-1" {
		t.Errorf("expected user-1, got %q", got.UserID)
	}

	// Wrong secret, valid id.
	if _, err := svc.ValidateToken(context.Background(), created.ID+".wrongsecret"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expected ErrInvalidSession for bad secret, got %v", err)
	}

	// Malformed tokens fail closed.
	for _, token := range []string{"", "noseparator", ".leading", "trailing.", created.ID} {
		if _, err := svc.ValidateToken(context.Background(), token); !errors.Is(err, ErrInvalidSession) {
			t.Errorf("token %q: expected ErrInvalidSession, got %v", token, err)
		}
	}
}

func TestSessionValidateTokenExpiresByAbsoluteAge(t *testing.T) {
	now := time.Now()
	deleted := ""
	session := &domain.Session{
		ID:             "sess",
		UserID:         "user-1",
		SecretHash:     HashSecret("secret"),
		CreatedAt:      now.Add(-11 * 24 * time.Hour),
		LastVerifiedAt: now.Add(-time.Minute),
	}
	repo := &mockSessionRepo{
		getFn: func(ctx context.Context, id string) (*domain.Session, error) {
			cp := *session
			return &cp, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	svc := NewSessionService(repo)
	svc.now = func() time.Time { return now }

	if _, err := svc.ValidateToken(context.Background(), "sess.secret"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for aged session, got %v", err)
	}
	if deleted != "sess" {
		t.Error("expired session should be deleted on detection")
	}
}

func TestSessionValidateTokenThrottlesTouch(t *testing.T) {
	now := time.Now()
	touches := 0
	session := &domain.Session{
		ID:             "sess",
		UserID:         "user-1",
		SecretHash:     HashSecret("secret"),
		CreatedAt:      now.Add(-time.Hour),
		LastVerifiedAt: now.Add(-time.Minute),
	}
	repo := &mockSessionRepo{
		getFn: func(ctx context.Context, id string) (*domain.Session, error) {
			cp := *session
			return &cp, nil
		},
		touchFn: func(ctx context.Context, id string, t time.Time) error {
			touches++
			return nil
		},
	}
	svc := NewSessionService(repo)
	svc.now = func() time.Time { return now }

	// Verified a minute ago: no write.
	if _, err := svc.ValidateToken(context.Background(), "sess.secret"); err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if touches != 0 {
		t.Errorf("expected no touch inside the refresh interval, got %d", touches)
	}

	// Older than the refresh interval: one write.
	session.LastVerifiedAt = now.Add(-2 * time.Hour)
	if _, err := svc.ValidateToken(context.Background(), "sess.secret"); err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if touches != 1 {
		t.Errorf("expected exactly one touch, got %d", touches)
	}
}
