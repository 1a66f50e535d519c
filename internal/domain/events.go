package domain

import (
	"encoding/json"
	"time"
)

type EventType string

const (
	EventProjectCreated      EventType = "project_created"
	EventProjectUpdated      EventType = "project_updated"
	EventProjectDeleted      EventType = "project_deleted"
	EventTaskCreated         EventType = "task_created"
	EventTaskUpdated         EventType = "task_updated"
	EventTaskDeleted         EventType = "task_deleted"
	EventRequirementCreated  EventType = "requirement_created"
	EventRequirementUpdated  EventType = "requirement_updated"
	EventNotificationCreated EventType = "notification_created"
)

func (t EventType) Known() bool {
	switch t {
	case EventProjectCreated, EventProjectUpdated, EventProjectDeleted,
		EventTaskCreated, EventTaskUpdated, EventTaskDeleted,
		EventRequirementCreated, EventRequirementUpdated,
		EventNotificationCreated:
		return true
	}
	return false
}

// Event is the realtime wire envelope, both for server pushes and for
// client-emitted messages. Data stays opaque to the sync core.
type Event struct {
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	ProjectID int             `json:"projectId,omitempty"`
	UserID    UserID          `json:"userId,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
