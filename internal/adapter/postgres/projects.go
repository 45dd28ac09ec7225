package postgres

import (
	"context"
	"database/sql"
	"errors"

	"colab/internal/domain"
)

// ProjectRepo implements domain.ProjectRepository.
type ProjectRepo struct {
	sql *sql.DB
}

// Projects returns the project repository.
func (d *DB) Projects() *ProjectRepo {
	return &ProjectRepo{sql: d.sql}
}

// projectSelect pulls aggregate counts alongside the row so list and detail
// views avoid per-project count queries.
const projectSelect = `
SELECT p.id, p.name, p.description, p.created_by, p.created_at,
       (SELECT COUNT(1) FROM tasks t WHERE t.project_id = p.id),
       (SELECT COUNT(1) FROM files f WHERE f.project_id = p.id),
       (SELECT COUNT(1) FROM messages m WHERE m.project_id = p.id)
FROM projects p`

// Create inserts a new project.
func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	_, err := r.sql.ExecContext(ctx,
		"INSERT INTO projects(id, name, description, created_by, created_at) VALUES($1, $2, $3, $4, $5);",
		p.ID, p.Name, p.Description, p.CreatedBy, p.CreatedAt.UTC())
	return err
}

// GetByID returns a project with aggregate counts, or nil when absent.
func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.sql.QueryRowContext(ctx, projectSelect+" WHERE p.id=$1;", id)

	var p domain.Project
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt,
		&p.TaskCount, &p.FileCount, &p.MessageCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ListForUser returns the projects the user is a member of, newest first.
func (r *ProjectRepo) ListForUser(ctx context.Context, userID string) ([]domain.Project, error) {
	rows, err := r.sql.QueryContext(ctx,
		projectSelect+` JOIN project_members pm ON pm.project_id = p.id
		 WHERE pm.user_id = $1 ORDER BY p.created_at DESC;`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0)
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt,
			&p.TaskCount, &p.FileCount, &p.MessageCount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update rewrites a project's name and description.
func (r *ProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	_, err := r.sql.ExecContext(ctx,
		"UPDATE projects SET name=$2, description=$3 WHERE id=$1;",
		p.ID, p.Name, p.Description)
	return err
}

// Delete removes a project; members, tasks, files, and messages cascade.
func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	_, err := r.sql.ExecContext(ctx, "DELETE FROM projects WHERE id=$1;", id)
	return err
}

// Count returns the total number of projects.
func (r *ProjectRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.sql.QueryRowContext(ctx, "SELECT COUNT(1) FROM projects;").Scan(&n)
	return n, err
}

// MemberRepo implements domain.MemberRepository.
type MemberRepo struct {
	sql *sql.DB
}

// Members returns the project membership repository.
func (d *DB) Members() *MemberRepo {
	return &MemberRepo{sql: d.sql}
}

// Add inserts a membership row.
func (r *MemberRepo) Add(ctx context.Context, m *domain.ProjectMember) error {
	_, err := r.sql.ExecContext(ctx,
		"INSERT INTO project_members(user_id, project_id, role) VALUES($1, $2, $3);",
		m.UserID, m.ProjectID, m.Role)
	return err
}

// Get returns a membership, or nil when the user is not a member.
func (r *MemberRepo) Get(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error) {
	row := r.sql.QueryRowContext(ctx,
		`SELECT pm.user_id, pm.project_id, pm.role, u.name, u.email, u.profile_picture_url
		 FROM project_members pm JOIN users u ON u.id = pm.user_id
		 WHERE pm.project_id=$1 AND pm.user_id=$2;`, projectID, userID)

	var m domain.ProjectMember
	if err := row.Scan(&m.UserID, &m.ProjectID, &m.Role, &m.Name, &m.Email, &m.ProfilePictureURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// List returns a project's members with denormalized user fields.
func (r *MemberRepo) List(ctx context.Context, projectID string) ([]domain.ProjectMember, error) {
	rows, err := r.sql.QueryContext(ctx,
		`SELECT pm.user_id, pm.project_id, pm.role, u.name, u.email, u.profile_picture_url
		 FROM project_members pm JOIN users u ON u.id = pm.user_id
		 WHERE pm.project_id=$1 ORDER BY u.name;`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ProjectMember, 0)
	for rows.Next() {
		var m domain.ProjectMember
		if err := rows.Scan(&m.UserID, &m.ProjectID, &m.Role, &m.Name, &m.Email, &m.ProfilePictureURL); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Remove deletes a membership row.
func (r *MemberRepo) Remove(ctx context.Context, projectID, userID string) error {
	_, err := r.sql.ExecContext(ctx,
		"DELETE FROM project_members WHERE project_id=$1 AND user_id=$2;", projectID, userID)
	return err
}
