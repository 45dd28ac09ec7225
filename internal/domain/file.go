package domain

import (
	"context"
	"io"
	"time"
)

// File is a metadata record for a blob stored in object storage.
type File struct {
	ID          string
	ProjectID   string
	TaskID      string // empty when not attached to a task
	Name        string
	ObjectKey   string
	URL         string
	Size        int64
	ContentType string
	UploadedBy  string
	CreatedAt   time.Time
}

// FileRepository defines the port for file metadata persistence.
type FileRepository interface {
	Create(ctx context.Context, f *File) error
	GetByID(ctx context.Context, id string) (*File, error)
	ListForProject(ctx context.Context, projectID string) ([]File, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// BlobStore defines the port for the object-storage collaborator.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (url string, err error)
	Remove(ctx context.Context, key string) error
}
