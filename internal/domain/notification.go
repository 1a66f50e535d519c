package domain

import "time"

type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "Baixa"
	NotificationPriorityMedium NotificationPriority = "Média"
	NotificationPriorityHigh   NotificationPriority = "Alta"
	NotificationPriorityUrgent NotificationPriority = "Urgente"
)

type Notification struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Priority  NotificationPriority `json:"priority"`
	IsRead    bool                 `json:"is_read"`
	ProjectID int                  `json:"project_id,omitempty"`
	UserID    UserID               `json:"user_id"`
	Metadata  map[string]any       `json:"metadata,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}
