package app

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"

	"colab/internal/domain"

	"github.com/google/uuid"
)

// ErrFileNotFound indicates the file does not exist in the given project.
var ErrFileNotFound = errors.New("file not found")

// FileService stores uploads in object storage and tracks their metadata.
type FileService struct {
	files    domain.FileRepository
	blobs    domain.BlobStore
	projects *ProjectService
}

// NewFileService creates a new file service.
func NewFileService(files domain.FileRepository, blobs domain.BlobStore, projects *ProjectService) *FileService {
	return &FileService{files: files, blobs: blobs, projects: projects}
}

// Upload streams a blob into object storage under a fresh key and persists
// its metadata. taskID may be empty for project-level attachments.
func (s *FileService) Upload(ctx context.Context, projectID, taskID, userID, name, contentType string, size int64, r io.Reader) (*domain.File, error) {
	if err := s.projects.RequireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("file name is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := uuid.NewString() + path.Ext(name)
	url, err := s.blobs.Put(ctx, key, r, size, contentType)
	if err != nil {
		return nil, err
	}

	file := &domain.File{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		TaskID:      taskID,
		Name:        name,
		ObjectKey:   key,
		URL:         url,
		Size:        size,
		ContentType: contentType,
		UploadedBy:  userID,
		CreatedAt:   time.Now(),
	}
	if err := s.files.Create(ctx, file); err != nil {
		// Keep storage and metadata consistent: drop the orphaned blob.
		_ = s.blobs.Remove(ctx, key)
		return nil, err
	}
	return file, nil
}

// List returns a project's files; members only.
func (s *FileService) List(ctx context.Context, projectID, userID string) ([]domain.File, error) {
	if err := s.projects.RequireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.files.ListForProject(ctx, projectID)
}

// Delete removes a file record and its blob. Allowed for the uploader or a
// project admin.
func (s *FileService) Delete(ctx context.Context, projectID, fileID, userID string) error {
	if err := s.projects.RequireMember(ctx, projectID, userID); err != nil {
		return err
	}
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if file == nil || file.ProjectID != projectID {
		return ErrFileNotFound
	}
	if file.UploadedBy != userID {
		if err := s.projects.requireAdmin(ctx, projectID, userID); err != nil {
			return err
		}
	}
	if err := s.files.Delete(ctx, fileID); err != nil {
		return err
	}
	_ = s.blobs.Remove(ctx, file.ObjectKey)
	return nil
}
