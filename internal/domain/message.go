package domain

import (
	"context"
	"time"
)

// Message is a chat message posted to a project.
type Message struct {
	ID        string
	ProjectID string
	UserID    string
	Body      string
	CreatedAt time.Time

	// Denormalized author fields, populated by list queries.
	AuthorName              string
	AuthorProfilePictureURL string
}

// MessageRepository defines the port for message persistence operations.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	ListForProject(ctx context.Context, projectID string, limit int) ([]Message, error)
	Count(ctx context.Context) (int, error)
}
