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
	// ErrProjectNotFound covers missing projects and membership-gated
	// lookups; non-members cannot distinguish "absent" from "not yours".
	ErrProjectNotFound = errors.New("project not found")
	// ErrForbidden indicates the caller lacks the required project role.
	ErrForbidden = errors.New("forbidden")
	// ErrAlreadyMember indicates the target user already belongs to the project.
	ErrAlreadyMember = errors.New("user is already a member of this project")
)

// ProjectService manages projects and their memberships.
type ProjectService struct {
	projects domain.ProjectRepository
	members  domain.MemberRepository
	users    domain.UserRepository
	mailer   Mailer
	origin   string
}

// NewProjectService creates a new project service.
func NewProjectService(projects domain.ProjectRepository, members domain.MemberRepository, users domain.UserRepository, mailer Mailer, origin string) *ProjectService {
	return &ProjectService{
		projects: projects,
		members:  members,
		users:    users,
		mailer:   mailer,
		origin:   origin,
	}
}

// List returns the projects the user is a member of, newest first.
func (s *ProjectService) List(ctx context.Context, userID string) ([]domain.Project, error) {
	return s.projects.ListForUser(ctx, userID)
}

// Create creates a project and enrolls the creator as its admin member.
func (s *ProjectService) Create(ctx context.Context, userID, name, description string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("project name is required")
	}

	project := &domain.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CreatedBy:   userID,
		CreatedAt:   time.Now(),
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	member := &domain.ProjectMember{
		UserID:    userID,
		ProjectID: project.ID,
		Role:      domain.MemberRoleAdmin,
	}
	if err := s.members.Add(ctx, member); err != nil {
		return nil, err
	}
	return project, nil
}

// Get returns a project if the user is a member of it.
func (s *ProjectService) Get(ctx context.Context, projectID, userID string) (*domain.Project, error) {
	if err := s.RequireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

// Update renames or re-describes a project; requires project-admin role.
func (s *ProjectService) Update(ctx context.Context, projectID, userID, name, description string) (*domain.Project, error) {
	if err := s.requireAdmin(ctx, projectID, userID); err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if name = strings.TrimSpace(name); name != "" {
		project.Name = name
	}
	project.Description = strings.TrimSpace(description)
	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes a project and everything under it; only the creator may.
func (s *ProjectService) Delete(ctx context.Context, projectID, userID string) error {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return ErrProjectNotFound
	}
	if project.CreatedBy != userID {
		return ErrForbidden
	}
	return s.projects.Delete(ctx, projectID)
}

// ListMembers returns the project's members; members only.
func (s *ProjectService) ListMembers(ctx context.Context, projectID, userID string) ([]domain.ProjectMember, error) {
	if err := s.RequireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.members.List(ctx, projectID)
}

// AddMember adds a user to a project by email; requires project-admin role.
// An unknown email provisions an invited account and emails an invitation;
// an existing user is enrolled directly and notified.
func (s *ProjectService) AddMember(ctx context.Context, projectID, actorID, email string, role domain.MemberRole) (*domain.ProjectMember, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("user email is required")
	}
	if role == "" {
		role = domain.MemberRoleMember
	}

	if err := s.requireAdmin(ctx, projectID, actorID); err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	target, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if target != nil {
		existing, err := s.members.Get(ctx, projectID, target.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrAlreadyMember
		}
		member := &domain.ProjectMember{UserID: target.ID, ProjectID: projectID, Role: role}
		if err := s.members.Add(ctx, member); err != nil {
			return nil, err
		}
		inviteURL := fmt.Sprintf("%s/projects/%s", s.origin, projectID)
		if err := s.mailer.SendProjectInvite(ctx, email, actor.Name, project.Name, inviteURL, role); err != nil {
			return member, fmt.Errorf("send invite mail: %w", err)
		}
		return member, nil
	}

	// Provision an account the invitee completes via the invite link. The
	// placeholder password is random and never communicated, so the account
	// is unusable until the invite is accepted.
	inviteToken := uuid.NewString()
	placeholder, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	name, _, _ := strings.Cut(email, "@")
	invitee := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(placeholder),
		Role:         domain.RoleUser,
		InviteToken:  inviteToken,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, invitee); err != nil {
		return nil, err
	}
	member := &domain.ProjectMember{UserID: invitee.ID, ProjectID: projectID, Role: role}
	if err := s.members.Add(ctx, member); err != nil {
		return nil, err
	}
	inviteURL := fmt.Sprintf("%s/auth/invite?token=%s", s.origin, inviteToken)
	if err := s.mailer.SendProjectInvite(ctx, email, actor.Name, project.Name, inviteURL, role); err != nil {
		return member, fmt.Errorf("send invite mail: %w", err)
	}
	return member, nil
}

// RemoveMember removes a user from a project; requires project-admin role.
func (s *ProjectService) RemoveMember(ctx context.Context, projectID, actorID, memberID string) error {
	if err := s.requireAdmin(ctx, projectID, actorID); err != nil {
		return err
	}
	return s.members.Remove(ctx, projectID, memberID)
}

// RequireMember returns ErrProjectNotFound unless the user belongs to the
// project. Membership failures are reported as not-found so project ids
// cannot be probed.
func (s *ProjectService) RequireMember(ctx context.Context, projectID, userID string) error {
	member, err := s.members.Get(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrProjectNotFound
	}
	return nil
}

func (s *ProjectService) requireAdmin(ctx context.Context, projectID, userID string) error {
	member, err := s.members.Get(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrProjectNotFound
	}
	if member.Role != domain.MemberRoleAdmin {
		return ErrForbidden
	}
	return nil
}
