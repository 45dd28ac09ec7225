package postgres

import (
	"context"
	"database/sql"
	"errors"

	"colab/internal/domain"
)

// FileRepo implements domain.FileRepository.
type FileRepo struct {
	sql *sql.DB
}

// Files returns the file metadata repository.
func (d *DB) Files() *FileRepo {
	return &FileRepo{sql: d.sql}
}

const fileColumns = "id, project_id, task_id, name, object_key, url, size, content_type, uploaded_by, created_at"

// Create inserts a file metadata row. An empty TaskID is stored as NULL so
// task deletion can detach files without dangling references.
func (r *FileRepo) Create(ctx context.Context, f *domain.File) error {
	var taskID sql.NullString
	if f.TaskID != "" {
		taskID = sql.NullString{String: f.TaskID, Valid: true}
	}
	_, err := r.sql.ExecContext(ctx,
		"INSERT INTO files("+fileColumns+") VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);",
		f.ID, f.ProjectID, taskID, f.Name, f.ObjectKey, f.URL, f.Size, f.ContentType,
		f.UploadedBy, f.CreatedAt.UTC())
	return err
}

func scanFile(row *sql.Row) (*domain.File, error) {
	var f domain.File
	var taskID sql.NullString
	err := row.Scan(&f.ID, &f.ProjectID, &taskID, &f.Name, &f.ObjectKey, &f.URL,
		&f.Size, &f.ContentType, &f.UploadedBy, &f.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	f.TaskID = taskID.String
	return &f, nil
}

// GetByID returns the file with the given id, or nil when absent.
func (r *FileRepo) GetByID(ctx context.Context, id string) (*domain.File, error) {
	return scanFile(r.sql.QueryRowContext(ctx,
		"SELECT "+fileColumns+" FROM files WHERE id=$1;", id))
}

// ListForProject returns a project's files newest-first.
func (r *FileRepo) ListForProject(ctx context.Context, projectID string) ([]domain.File, error) {
	rows, err := r.sql.QueryContext(ctx,
		"SELECT "+fileColumns+" FROM files WHERE project_id=$1 ORDER BY created_at DESC;", projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.File, 0)
	for rows.Next() {
		var f domain.File
		var taskID sql.NullString
		if err := rows.Scan(&f.ID, &f.ProjectID, &taskID, &f.Name, &f.ObjectKey, &f.URL,
			&f.Size, &f.ContentType, &f.UploadedBy, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.TaskID = taskID.String
		out = append(out, f)
	}
	return out, rows.Err()
}

// Delete removes a file metadata row.
func (r *FileRepo) Delete(ctx context.Context, id string) error {
	_, err := r.sql.ExecContext(ctx, "DELETE FROM files WHERE id=$1;", id)
	return err
}

// Count returns the total number of files.
func (r *FileRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.sql.QueryRowContext(ctx, "SELECT COUNT(1) FROM files;").Scan(&n)
	return n, err
}
