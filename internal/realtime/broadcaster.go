package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"colab/internal/domain"
)

// heartbeatInterval paces the liveness sweep; SSE clients also see these as
// keep-alive frames.
const heartbeatInterval = 30 * time.Second

// Broadcaster fans typed domain events out to every connection subscribed
// to the event's project, excluding the originator.
type Broadcaster struct {
	reg *Registry
}

// NewBroadcaster creates a broadcaster over the given registry.
func NewBroadcaster(reg *Registry) *Broadcaster {
	return &Broadcaster{reg: reg}
}

// Publish serializes the event once and delivers it to every same-project,
// different-user connection. A failed send removes only that connection;
// delivery to the remaining subscribers continues.
func (b *Broadcaster) Publish(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Printf("realtime: marshal %s event: %v", evt.Type, err)
		return
	}
	for _, c := range b.reg.snapshot() {
		if c.ProjectID != evt.ProjectID || c.UserID == evt.UserID {
			continue
		}
		if err := c.transport.Send(data); err != nil {
			log.Printf("realtime: send to %s failed, dropping connection: %v", c.ID, err)
			b.reg.Remove(c.ID)
		}
	}
}

// TaskCreated broadcasts a task_created event.
func (b *Broadcaster) TaskCreated(projectID string, task *domain.Task, userID string) {
	b.Publish(taskEvent(EventTaskCreated, projectID, task, userID))
}

// TaskUpdated broadcasts a task_updated event.
func (b *Broadcaster) TaskUpdated(projectID string, task *domain.Task, userID string) {
	b.Publish(taskEvent(EventTaskUpdated, projectID, task, userID))
}

// TaskMoved broadcasts a task_moved event; used when a mutation changed the
// task's board column.
func (b *Broadcaster) TaskMoved(projectID string, task *domain.Task, userID string) {
	b.Publish(taskEvent(EventTaskMoved, projectID, task, userID))
}

// TaskDeleted broadcasts a task_deleted event.
func (b *Broadcaster) TaskDeleted(projectID, taskID, userID string) {
	b.Publish(Event{
		Type:      EventTaskDeleted,
		ProjectID: projectID,
		UserID:    userID,
		Data:      map[string]any{"taskId": taskID},
		Timestamp: time.Now().UnixMilli(),
	})
}

// SendHeartbeat probes every connection with a heartbeat frame. Connections
// that fail the probe are removed, bounding registry growth under silently
// dropped clients.
func (b *Broadcaster) SendHeartbeat() {
	data, err := json.Marshal(heartbeatEvent())
	if err != nil {
		return
	}
	for _, c := range b.reg.snapshot() {
		if err := c.transport.Send(data); err != nil {
			log.Printf("realtime: heartbeat to %s failed, dropping connection: %v", c.ID, err)
			b.reg.Remove(c.ID)
			continue
		}
		b.reg.Touch(c.ID)
	}
}

// Run sweeps heartbeats on a fixed interval until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.SendHeartbeat()
		}
	}
}
