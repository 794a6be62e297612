package ports

// Broadcast event names delivered over the live channel.
const (
	EventNotification   = "notification"
	EventTaskUpdated    = "task-updated"
	EventTaskDeleted    = "task-deleted"
	EventCommentAdded   = "comment-added"
	EventProjectComment = "project-comment"
)

// UserChannel is the per-user broadcast channel name.
func UserChannel(userID string) string { return "user-" + userID }

// ProjectChannel is the per-project broadcast channel name.
func ProjectChannel(projectID string) string { return "project-" + projectID }

// Broadcaster pushes an event to every live subscriber of a channel.
// Delivery is best-effort and at-most-once; offline subscribers miss the
// event and rely on the persisted record.
type Broadcaster interface {
	Publish(channel, event string, payload any)
}
