// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// Role is an application-wide user role.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// User represents a registered account.
type User struct {
	ID                string
	Name              string
	Email             string
	PasswordHash      string
	ContactNumber     string
	ProfilePictureURL string
	Role              Role
	EmailVerified     bool
	VerificationToken string
	InviteToken       string
	CreatedAt         time.Time
}

// UserRepository defines the port for user persistence operations.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByVerificationToken(ctx context.Context, token string) (*User, error)
	GetByInviteToken(ctx context.Context, token string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]User, error)
	ListRecent(ctx context.Context, limit int) ([]User, error)
	Count(ctx context.Context) (int, error)
	CountByRole(ctx context.Context) (map[Role]int, error)
}
