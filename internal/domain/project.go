package domain

import (
	"context"
	"time"
)

// MemberRole is a user's role within a single project.
type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "Admin"
	MemberRoleMember MemberRole = "Member"
)

// Project is a collaboration workspace owned by its creator.
type Project struct {
	ID          string
	Name        string
	Description string
	CreatedBy   string
	CreatedAt   time.Time

	// Aggregate counts, populated by list queries.
	TaskCount    int
	FileCount    int
	MessageCount int
}

// ProjectMember links a user to a project with a per-project role.
type ProjectMember struct {
	UserID    string
	ProjectID string
	Role      MemberRole

	// Denormalized user fields, populated by list queries.
	Name              string
	Email             string
	ProfilePictureURL string
}

// ProjectRepository defines the port for project persistence operations.
type ProjectRepository interface {
	Create(ctx context.Context, p *Project) error
	GetByID(ctx context.Context, id string) (*Project, error)
	ListForUser(ctx context.Context, userID string) ([]Project, error)
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// MemberRepository defines the port for project membership operations.
type MemberRepository interface {
	Add(ctx context.Context, m *ProjectMember) error
	Get(ctx context.Context, projectID, userID string) (*ProjectMember, error)
	List(ctx context.Context, projectID string) ([]ProjectMember, error)
	Remove(ctx context.Context, projectID, userID string) error
}
