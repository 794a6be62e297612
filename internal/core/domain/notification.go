package domain

import "time"

// NotificationType tags the system action that produced a notification.
type NotificationType string

const (
	NotifyTaskAssigned    NotificationType = "task_assigned"
	NotifyStatusChanged   NotificationType = "status_changed"
	NotifyCommentAdded    NotificationType = "comment_added"
	NotifyDueDateReminder NotificationType = "due_date_reminder"
	NotifyProjectInvite   NotificationType = "project_invite"
)

// Notification targets a single user. Notifications are created only as side
// effects of system actions, never by direct user request; the record is the
// durable copy, the live push is best-effort.
type Notification struct {
	ID        string           `json:"id" bson:"_id,omitempty"`
	UserID    string           `json:"user_id" bson:"user_id"`
	Type      NotificationType `json:"type" bson:"type"`
	Payload   map[string]any   `json:"payload" bson:"payload"`
	Message   string           `json:"message,omitempty" bson:"message,omitempty"`
	Read      bool             `json:"read" bson:"read"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
}
