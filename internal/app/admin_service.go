package app

import (
	"context"
	"errors"

	"colab/internal/domain"
)

// AdminStats aggregates application-wide counts for the admin console.
type AdminStats struct {
	TotalUsers    int                       `json:"totalUsers"`
	TotalAdmins   int                       `json:"totalAdmins"`
	TotalProjects int                       `json:"totalProjects"`
	TotalTasks    int                       `json:"totalTasks"`
	TotalFiles    int                       `json:"totalFiles"`
	TotalMessages int                       `json:"totalMessages"`
	UsersByRole   map[domain.Role]int       `json:"usersByRole"`
	TasksByStatus map[domain.TaskStatus]int `json:"tasksByStatus"`
	RecentUsers   []domain.User             `json:"-"`
}

// AdminService backs the admin console. Role checks happen at the HTTP
// layer; the service assumes an authorized caller.
type AdminService struct {
	users    domain.UserRepository
	projects domain.ProjectRepository
	tasks    domain.TaskRepository
	files    domain.FileRepository
	messages domain.MessageRepository
}

// NewAdminService creates a new admin service.
func NewAdminService(users domain.UserRepository, projects domain.ProjectRepository, tasks domain.TaskRepository, files domain.FileRepository, messages domain.MessageRepository) *AdminService {
	return &AdminService{
		users:    users,
		projects: projects,
		tasks:    tasks,
		files:    files,
		messages: messages,
	}
}

// Stats gathers application-wide statistics.
func (s *AdminService) Stats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{}
	var err error

	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalProjects, err = s.projects.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalTasks, err = s.tasks.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalFiles, err = s.files.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalMessages, err = s.messages.Count(ctx); err != nil {
		return nil, err
	}
	if stats.UsersByRole, err = s.users.CountByRole(ctx); err != nil {
		return nil, err
	}
	stats.TotalAdmins = stats.UsersByRole[domain.RoleAdmin]
	if stats.TasksByStatus, err = s.tasks.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if stats.RecentUsers, err = s.users.ListRecent(ctx, 5); err != nil {
		return nil, err
	}
	return stats, nil
}

// ListUsers returns all accounts.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// UpdateUserRole changes an account's application-wide role.
func (s *AdminService) UpdateUserRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	if role != domain.RoleAdmin && role != domain.RoleUser {
		return nil, errors.New("invalid role")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account. Deleting the acting admin is the HTTP
// layer's problem to prevent.
func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	return s.users.Delete(ctx, userID)
}
