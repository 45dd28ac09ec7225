package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"colab/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided email or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken indicates that an account with the email already exists.
	ErrEmailTaken = errors.New("email already used")
	// ErrEmailNotVerified indicates a login attempt before email verification.
	ErrEmailNotVerified = errors.New("email not verified")
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrTokenNotFound indicates an unknown verification or invite token.
	ErrTokenNotFound = errors.New("token not found")
	// ErrPasswordTooShort rejects passwords under the minimum length.
	ErrPasswordTooShort = errors.New("password too short")
)

const minPasswordLength = 6

// Mailer is the port for the transactional email collaborator.
type Mailer interface {
	SendVerification(ctx context.Context, to, name, verifyURL string) error
	SendProjectInvite(ctx context.Context, to, inviterName, projectName, inviteURL string, role domain.MemberRole) error
}

// AuthService handles registration, email verification, and login.
type AuthService struct {
	users    domain.UserRepository
	sessions *SessionService
	mailer   Mailer
	origin   string
}

// NewAuthService creates a new authentication service. origin is the public
// base URL used in emailed links.
func NewAuthService(users domain.UserRepository, sessions *SessionService, mailer Mailer, origin string) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		mailer:   mailer,
		origin:   origin,
	}
}

// Register creates an unverified account and emails a verification link.
// The first registered user becomes an application admin. Returns whether
// this registration was the first-user setup.
func (s *AuthService) Register(ctx context.Context, name, email, password, contactNumber string) (bool, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return false, errors.New("name and email are required")
	}
	if len(password) < minPasswordLength {
		return false, ErrPasswordTooShort
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, ErrEmailTaken
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	isFirstUser := count == 0

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	role := domain.RoleUser
	if isFirstUser {
		role = domain.RoleAdmin
	}

	user := &domain.User{
		ID:                uuid.NewString(),
		Name:              name,
		Email:             email,
		PasswordHash:      string(hash),
		ContactNumber:     contactNumber,
		Role:              role,
		EmailVerified:     false,
		VerificationToken: uuid.NewString(),
		CreatedAt:         time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return false, err
	}

	verifyURL := fmt.Sprintf("%s/auth/verify?token=%s", s.origin, user.VerificationToken)
	if err := s.mailer.SendVerification(ctx, user.Email, user.Name, verifyURL); err != nil {
		return isFirstUser, fmt.Errorf("send verification mail: %w", err)
	}
	return isFirstUser, nil
}

// VerifyEmail marks the account that owns the token as verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return ErrTokenNotFound
	}
	user, err := s.users.GetByVerificationToken(ctx, token)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrTokenNotFound
	}
	user.EmailVerified = true
	user.VerificationToken = ""
	return s.users.Update(ctx, user)
}

// ResendVerification issues a fresh verification token and re-sends the
// email. Already-verified accounts are left untouched.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.EmailVerified {
		return nil
	}
	user.VerificationToken = uuid.NewString()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	verifyURL := fmt.Sprintf("%s/auth/verify?token=%s", s.origin, user.VerificationToken)
	return s.mailer.SendVerification(ctx, user.Email, user.Name, verifyURL)
}

// Login authenticates a user and creates a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *SessionWithToken, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, nil, ErrEmailNotVerified
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// Logout invalidates a session. Unknown sessions are a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// AcceptInvite completes account setup for a user provisioned through a
// project invitation: the invitee picks a name and password, the account is
// marked verified, and a session is issued.
func (s *AuthService) AcceptInvite(ctx context.Context, token, name, password string) (*domain.User, *SessionWithToken, error) {
	if token == "" {
		return nil, nil, ErrTokenNotFound
	}
	if len(password) < minPasswordLength {
		return nil, nil, ErrPasswordTooShort
	}
	user, err := s.users.GetByInviteToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrTokenNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}
	user.PasswordHash = string(hash)
	user.EmailVerified = true
	user.InviteToken = ""
	if err := s.users.Update(ctx, user); err != nil {
		return nil, nil, err
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// LoginWithIdentity creates a session for an externally authenticated user
// (e.g. via SSO), auto-provisioning a verified account on first login.
func (s *AuthService) LoginWithIdentity(ctx context.Context, email, name string) (*domain.User, *SessionWithToken, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		count, err := s.users.Count(ctx)
		if err != nil {
			return nil, nil, err
		}
		role := domain.RoleUser
		if count == 0 {
			role = domain.RoleAdmin
		}
		if name == "" {
			name, _, _ = strings.Cut(email, "@")
		}
		user = &domain.User{
			ID:            uuid.NewString(),
			Name:          name,
			Email:         email,
			Role:          role,
			EmailVerified: true,
			CreatedAt:     time.Now(),
		}
		if err := s.users.Create(ctx, user); err != nil {
			// Lost a provisioning race; the account should exist now.
			user, err = s.users.GetByEmail(ctx, email)
			if err != nil || user == nil {
				return nil, nil, fmt.Errorf("provision sso user: %w", err)
			}
		}
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

// UserForToken resolves a bearer token to its session and owning user.
func (s *AuthService) UserForToken(ctx context.Context, token string) (*domain.User, *domain.Session, error) {
	session, err := s.sessions.ValidateToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		// Session outlived its user; treat as invalid and clean up.
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, nil, ErrInvalidSession
	}
	return user, session, nil
}

// UpdateProfile changes a user's own display fields.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, name, contactNumber, profilePictureURL string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if name = strings.TrimSpace(name); name != "" {
		user.Name = name
	}
	user.ContactNumber = contactNumber
	user.ProfilePictureURL = profilePictureURL
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
