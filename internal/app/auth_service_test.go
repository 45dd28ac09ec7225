package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"colab/internal/adapter/memory"
	"colab/internal/domain"
)

type mockMailer struct {
	mu            sync.Mutex
	verifyURLs    []string
	inviteURLs    []string
	inviteTargets []string
}

func (m *mockMailer) SendVerification(ctx context.Context, to, name, verifyURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifyURLs = append(m.verifyURLs, verifyURL)
	return nil
}

func (m *mockMailer) SendProjectInvite(ctx context.Context, to, inviterName, projectName, inviteURL string, role domain.MemberRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inviteURLs = append(m.inviteURLs, inviteURL)
	m.inviteTargets = append(m.inviteTargets, to)
	return nil
}

func newAuthFixture() (*AuthService, *memory.DB, *mockMailer) {
	db := memory.New()
	mailer := &mockMailer{}
	sessions := NewSessionService(db.Sessions())
	return NewAuthService(db.Users(), sessions, mailer, "http://localhost:8080"), db, mailer
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	svc, db, mailer := newAuthFixture()
	ctx := context.Background()

	first, err := svc.Register(ctx, "Alice", "alice@example.com", "password", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !first {
		t.Error("expected first-user registration")
	}

	alice, err := db.Users().GetByEmail(ctx, "alice@example.com")
	if err != nil || alice == nil {
		t.Fatalf("GetByEmail: %v, %v", alice, err)
	}
	if alice.Role != domain.RoleAdmin {
		t.Errorf("first user should be Admin, got %s", alice.Role)
	}
	if alice.EmailVerified {
		t.Error("new accounts start unverified")
	}
	if alice.PasswordHash == "password" {
		t.Error("password must be hashed")
	}
	if len(mailer.verifyURLs) != 1 || !strings.Contains(mailer.verifyURLs[0], alice.VerificationToken) {
		t.Errorf("verification mail should carry the token, got %v", mailer.verifyURLs)
	}

	first, err = svc.Register(ctx, "Bob", "bob@example.com", "password", "")
	if err != nil {
		t.Fatalf("Register second: %v", err)
	}
	if first {
		t.Error("second registration is not first-user")
	}
	bob, _ := db.Users().GetByEmail(ctx, "bob@example.com")
	if bob.Role != domain.RoleUser {
		t.Errorf("second user should be User, got %s", bob.Role)
	}
}

func TestRegisterRejectsDuplicateAndShortPassword(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", "alice@example.com", "password", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "Other", "alice@example.com", "password", ""); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := svc.Register(ctx, "Short", "short@example.com", "12345", ""); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	svc, db, _ := newAuthFixture()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", "alice@example.com", "password", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(ctx, "alice@example.com", "password"); !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}

	alice, _ := db.Users().GetByEmail(ctx, "alice@example.com")
	if err := svc.VerifyEmail(ctx, alice.VerificationToken); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if err := svc.VerifyEmail(ctx, alice.VerificationToken); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("verification tokens are single use, got %v", err)
	}

	user, session, err := svc.Login(ctx, "alice@example.com", "password")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Email != "alice@example.com" || session.Token == "" {
		t.Error("login should return the user and a bearer token")
	}

	if _, _, err := svc.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	// Round trip through the bearer token.
	gotUser, gotSession, err := svc.UserForToken(ctx, session.Token)
	if err != nil {
		t.Fatalf("UserForToken: %v", err)
	}
	if gotUser.ID != user.ID || gotSession.ID != session.ID {
		t.Error("UserForToken should resolve the issued session")
	}

	// Logout invalidates it.
	if err := svc.Logout(ctx, session.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, _, err := svc.UserForToken(ctx, session.Token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expected ErrInvalidSession after logout, got %v", err)
	}
}

func TestAcceptInvite(t *testing.T) {
	svc, db, _ := newAuthFixture()
	ctx := context.Background()

	invitee := &domain.User{
		ID:          "invitee-1",
		Name:        "pending",
		Email:       "carol@example.com",
		Role:        domain.RoleUser,
		InviteToken: "invite-token",
	}
	if err := db.Users().Create(ctx, invitee); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, _, err := svc.AcceptInvite(ctx, "bogus", "Carol", "password"); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound, got %v", err)
	}
	if _, _, err := svc.AcceptInvite(ctx, "invite-token", "Carol", "123"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}

	user, session, err := svc.AcceptInvite(ctx, "invite-token", "Carol", "password")
	if err != nil {
		t.Fatalf("AcceptInvite: %v", err)
	}
	if user.Name != "Carol" || !user.EmailVerified || user.InviteToken != "" {
		t.Errorf("invite acceptance should finalize the account, got %+v", user)
	}
	if session.Token == "" {
		t.Error("invite acceptance should issue a session")
	}

	if _, _, err := svc.Login(ctx, "carol@example.com", "password"); err != nil {
		t.Errorf("password login after invite: %v", err)
	}
}

func TestLoginWithIdentityProvisionsVerifiedUser(t *testing.T) {
	svc, db, _ := newAuthFixture()
	ctx := context.Background()

	user, session, err := svc.LoginWithIdentity(ctx, "sso@example.com", "SSO User")
	if err != nil {
		t.Fatalf("LoginWithIdentity: %v", err)
	}
	if !user.EmailVerified {
		t.Error("sso-provisioned accounts are pre-verified")
	}
	if user.Role != domain.RoleAdmin {
		t.Errorf("first account, even via sso, should be Admin, got %s", user.Role)
	}
	if session.Token == "" {
		t.Error("expected a session token")
	}

	again, _, err := svc.LoginWithIdentity(ctx, "sso@example.com", "")
	if err != nil {
		t.Fatalf("LoginWithIdentity again: %v", err)
	}
	if again.ID != user.ID {
		t.Error("second sso login should reuse the account")
	}
	count, _ := db.Users().Count(ctx)
	if count != 1 {
		t.Errorf("expected 1 user, got %d", count)
	}
}

func TestUserForTokenCleansOrphanedSession(t *testing.T) {
	svc, db, _ := newAuthFixture()
	ctx := context.Background()

	session, err := svc.sessions.Create(ctx, "ghost-user")
	if err != nil {
		t.Fatalf("session Create: %v", err)
	}
	if _, _, err := svc.UserForToken(ctx, session.Token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for orphan session, got %v", err)
	}
	if got, _ := db.Sessions().GetByID(ctx, session.ID); got != nil {
		t.Error("orphaned session should be deleted")
	}
}
