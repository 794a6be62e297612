package ports

import (
	"context"

	"github.com/crewboard/crewboard-api/internal/core/domain"
)

// NotificationService persists notification records and pushes them to live
// subscribers.
type NotificationService interface {
	// Notify creates a record for the target user and attempts a best-effort
	// live push to the user's channel. Push failures never surface.
	Notify(ctx context.Context, userID string, typ domain.NotificationType, payload map[string]any, message string) (*domain.Notification, error)

	// FanoutProjectComment notifies every project member and the owner,
	// excluding the commenter, about an admin-authored project comment.
	// Per-recipient failures are logged and do not stop the fanout.
	FanoutProjectComment(ctx context.Context, p *domain.Project, author Actor, c *domain.Comment)

	List(ctx context.Context, actor Actor, read *bool) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, actor Actor, id string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, actor Actor) error
	UnreadCount(ctx context.Context, actor Actor) (int64, error)
}
