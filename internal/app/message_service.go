package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"colab/internal/domain"

	"github.com/google/uuid"
)

// MessageService manages project chat messages.
type MessageService struct {
	messages domain.MessageRepository
	projects *ProjectService
}

// NewMessageService creates a new message service.
func NewMessageService(messages domain.MessageRepository, projects *ProjectService) *MessageService {
	return &MessageService{messages: messages, projects: projects}
}

// List returns up to limit of a project's most recent messages.
func (s *MessageService) List(ctx context.Context, projectID, userID string, limit int) ([]domain.Message, error) {
	if err := s.projects.RequireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.messages.ListForProject(ctx, projectID, limit)
}

// Post appends a message to the project's conversation.
func (s *MessageService) Post(ctx context.Context, projectID, userID, body string) (*domain.Message, error) {
	if err := s.projects.RequireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, errors.New("message body is required")
	}
	msg := &domain.Message{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		UserID:    userID,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
