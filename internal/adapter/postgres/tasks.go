package postgres

import (
	"context"
	"database/sql"
	"errors"

	"colab/internal/domain"
)

// TaskRepo implements domain.TaskRepository.
type TaskRepo struct {
	sql *sql.DB
}

// Tasks returns the task repository.
func (d *DB) Tasks() *TaskRepo {
	return &TaskRepo{sql: d.sql}
}

const taskColumns = "id, project_id, user_id, title, description, status, priority, created_at, updated_at"

// Create inserts a new task.
func (r *TaskRepo) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.sql.ExecContext(ctx,
		"INSERT INTO tasks("+taskColumns+") VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9);",
		t.ID, t.ProjectID, t.UserID, t.Title, t.Description, t.Status, t.Priority,
		t.CreatedAt.UTC(), t.UpdatedAt.UTC())
	return err
}

// GetByID returns the task with the given id, or nil when absent.
func (r *TaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.sql.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id=$1;", id)

	var t domain.Task
	if err := row.Scan(&t.ID, &t.ProjectID, &t.UserID, &t.Title, &t.Description,
		&t.Status, &t.Priority, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// ListForProject returns a project's tasks newest-first, optionally filtered
// to a single board column.
func (r *TaskRepo) ListForProject(ctx context.Context, projectID string, status domain.TaskStatus) ([]domain.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE project_id=$1"
	args := []any{projectID}
	if status != "" {
		query += " AND status=$2"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC;"

	rows, err := r.sql.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Task, 0)
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.UserID, &t.Title, &t.Description,
			&t.Status, &t.Priority, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Update rewrites a task's mutable fields.
func (r *TaskRepo) Update(ctx context.Context, t *domain.Task) error {
	_, err := r.sql.ExecContext(ctx,
		"UPDATE tasks SET title=$2, description=$3, status=$4, priority=$5, updated_at=$6 WHERE id=$1;",
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.UpdatedAt.UTC())
	return err
}

// Delete removes a task.
func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	_, err := r.sql.ExecContext(ctx, "DELETE FROM tasks WHERE id=$1;", id)
	return err
}

// Count returns the total number of tasks.
func (r *TaskRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.sql.QueryRowContext(ctx, "SELECT COUNT(1) FROM tasks;").Scan(&n)
	return n, err
}

// CountByStatus returns task counts grouped by board column.
func (r *TaskRepo) CountByStatus(ctx context.Context) (map[domain.TaskStatus]int, error) {
	rows, err := r.sql.QueryContext(ctx, "SELECT status, COUNT(1) FROM tasks GROUP BY status;")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.TaskStatus]int)
	for rows.Next() {
		var status domain.TaskStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}
