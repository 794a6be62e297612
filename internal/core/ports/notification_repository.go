package ports

import (
	"context"

	"github.com/crewboard/crewboard-api/internal/core/domain"
)

// NotificationRepository persists notification records.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	// ListByUser returns the user's notifications, newest first, capped at
	// limit. read filters by read state when non-nil.
	ListByUser(ctx context.Context, userID string, read *bool, limit int) ([]*domain.Notification, error)
	// MarkRead flips the read flag. The notification must belong to userID,
	// otherwise domain.ErrNotificationNotFound.
	MarkRead(ctx context.Context, id, userID string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}
