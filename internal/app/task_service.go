package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"colab/internal/domain"

	"github.com/google/uuid"
)

// ErrTaskNotFound indicates the task does not exist in the given project.
var ErrTaskNotFound = errors.New("task not found")

// TaskEventPublisher is the port to the realtime broadcast layer. Request
// handling never fails because a broadcast did; implementations swallow
// per-connection delivery errors.
type TaskEventPublisher interface {
	TaskCreated(projectID string, task *domain.Task, userID string)
	TaskUpdated(projectID string, task *domain.Task, userID string)
	TaskDeleted(projectID, taskID, userID string)
	TaskMoved(projectID string, task *domain.Task, userID string)
}

// TaskUpdate carries the mutable task fields; nil means "leave unchanged".
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	Priority    *domain.TaskPriority
}

// TaskService manages a project's Kanban tasks and publishes their
// lifecycle events.
type TaskService struct {
	tasks    domain.TaskRepository
	projects *ProjectService
	events   TaskEventPublisher
	now      func() time.Time
}

// NewTaskService creates a new task service.
func NewTaskService(tasks domain.TaskRepository, projects *ProjectService, events TaskEventPublisher) *TaskService {
	return &TaskService{tasks: tasks, projects: projects, events: events, now: time.Now}
}

// List returns a project's tasks, optionally filtered to one board column.
func (s *TaskService) List(ctx context.Context, projectID, userID string, status domain.TaskStatus) ([]domain.Task, error) {
	if err := s.projects.RequireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if status != "" && !domain.ValidTaskStatus(status) {
		return nil, errors.New("invalid status filter")
	}
	return s.tasks.ListForProject(ctx, projectID, status)
}

// Create adds a task to the project board and broadcasts task_created.
func (s *TaskService) Create(ctx context.Context, projectID, userID, title, description string, status domain.TaskStatus, priority domain.TaskPriority) (*domain.Task, error) {
	if err := s.projects.RequireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("task title is required")
	}
	if status == "" {
		status = domain.TaskStatusTodo
	}
	if !domain.ValidTaskStatus(status) {
		return nil, errors.New("invalid status")
	}
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}
	if !domain.ValidTaskPriority(priority) {
		return nil, errors.New("invalid priority")
	}

	now := s.now()
	task := &domain.Task{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      status,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	s.events.TaskCreated(projectID, task, userID)
	return task, nil
}

// Update mutates a task and broadcasts task_moved when the board column
// changed, task_updated otherwise.
func (s *TaskService) Update(ctx context.Context, projectID, taskID, userID string, upd TaskUpdate) (*domain.Task, error) {
	if err := s.projects.RequireMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil || task.ProjectID != projectID {
		return nil, ErrTaskNotFound
	}

	moved := false
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, errors.New("task title cannot be empty")
		}
		task.Title = title
	}
	if upd.Description != nil {
		task.Description = strings.TrimSpace(*upd.Description)
	}
	if upd.Status != nil {
		if !domain.ValidTaskStatus(*upd.Status) {
			return nil, errors.New("invalid status")
		}
		moved = task.Status != *upd.Status
		task.Status = *upd.Status
	}
	if upd.Priority != nil {
		if !domain.ValidTaskPriority(*upd.Priority) {
			return nil, errors.New("invalid priority")
		}
		task.Priority = *upd.Priority
	}
	task.UpdatedAt = s.now()

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	if moved {
		s.events.TaskMoved(projectID, task, userID)
	} else {
		s.events.TaskUpdated(projectID, task, userID)
	}
	return task, nil
}

// Delete removes a task and broadcasts task_deleted.
func (s *TaskService) Delete(ctx context.Context, projectID, taskID, userID string) error {
	if err := s.projects.RequireMember(ctx, projectID, userID); err != nil {
		return err
	}
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil || task.ProjectID != projectID {
		return ErrTaskNotFound
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		return err
	}
	s.events.TaskDeleted(projectID, taskID, userID)
	return nil
}
