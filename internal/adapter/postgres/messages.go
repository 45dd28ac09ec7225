package postgres

import (
	"context"
	"database/sql"

	"colab/internal/domain"
)

// MessageRepo implements domain.MessageRepository.
type MessageRepo struct {
	sql *sql.DB
}

// Messages returns the message repository.
func (d *DB) Messages() *MessageRepo {
	return &MessageRepo{sql: d.sql}
}

// Create inserts a chat message.
func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	_, err := r.sql.ExecContext(ctx,
		"INSERT INTO messages(id, project_id, user_id, body, created_at) VALUES($1, $2, $3, $4, $5);",
		m.ID, m.ProjectID, m.UserID, m.Body, m.CreatedAt.UTC())
	return err
}

// ListForProject returns the most recent messages in chronological order.
func (r *MessageRepo) ListForProject(ctx context.Context, projectID string, limit int) ([]domain.Message, error) {
	// Fetch the newest rows, then reverse so callers render oldest-first.
	rows, err := r.sql.QueryContext(ctx,
		`SELECT m.id, m.project_id, m.user_id, m.body, m.created_at, u.name, u.profile_picture_url
		 FROM messages m JOIN users u ON u.id = m.user_id
		 WHERE m.project_id=$1 ORDER BY m.created_at DESC LIMIT $2;`, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Message, 0, limit)
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.Body, &m.CreatedAt,
			&m.AuthorName, &m.AuthorProfilePictureURL); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// Count returns the total number of messages.
func (r *MessageRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.sql.QueryRowContext(ctx, "SELECT COUNT(1) FROM messages;").Scan(&n)
	return n, err
}
