// Package realtime implements the in-process broadcast layer: a connection
// registry, a project-scoped event broadcaster over WebSocket and SSE
// transports, and a client adapter with reconnection and protocol fallback.
package realtime

import (
	"time"

	"colab/internal/domain"
)

// EventType enumerates the realtime wire events.
type EventType string

const (
	EventTaskCreated EventType = "task_created"
	EventTaskUpdated EventType = "task_updated"
	EventTaskDeleted EventType = "task_deleted"
	EventTaskMoved   EventType = "task_moved"
	EventConnected   EventType = "connected"
	EventHeartbeat   EventType = "heartbeat"
)

// Event is the immutable payload delivered to subscribers. Timestamp is
// Unix milliseconds.
type Event struct {
	Type         EventType      `json:"type"`
	ProjectID    string         `json:"projectId,omitempty"`
	UserID       string         `json:"userId,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
	Timestamp    int64          `json:"timestamp"`
	ConnectionID string         `json:"connectionId,omitempty"`
}

func taskEvent(typ EventType, projectID string, task *domain.Task, userID string) Event {
	return Event{
		Type:      typ,
		ProjectID: projectID,
		UserID:    userID,
		Data:      map[string]any{"task": task},
		Timestamp: time.Now().UnixMilli(),
	}
}

func connectedEvent(projectID, connectionID string) Event {
	return Event{
		Type:         EventConnected,
		ProjectID:    projectID,
		Timestamp:    time.Now().UnixMilli(),
		ConnectionID: connectionID,
	}
}

func heartbeatEvent() Event {
	return Event{Type: EventHeartbeat, Timestamp: time.Now().UnixMilli()}
}
