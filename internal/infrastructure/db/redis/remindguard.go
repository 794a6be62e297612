package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const reminderTTL = time.Hour

// ReminderGuard provides the time-windowed idempotence check for due-date
// reminders, backed by Redis.
// Key format: remind:<task_id>:<user_id>
type ReminderGuard struct {
	client *redis.Client
}

// NewReminderGuard creates a ReminderGuard wrapping the given Redis client.
func NewReminderGuard(client *redis.Client) *ReminderGuard {
	return &ReminderGuard{client: client}
}

// Seen reports whether a reminder for this task and assignee was already
// sent within the current window.
func (g *ReminderGuard) Seen(ctx context.Context, taskID, userID string) (bool, error) {
	n, err := g.client.Exists(ctx, g.key(taskID, userID)).Result()
	if err != nil {
		return false, fmt.Errorf("reminder window check: %w", err)
	}
	return n > 0, nil
}

// Mark records that a reminder was sent (expires after reminderTTL).
func (g *ReminderGuard) Mark(ctx context.Context, taskID, userID string) error {
	return g.client.Set(ctx, g.key(taskID, userID), "1", reminderTTL).Err()
}

func (g *ReminderGuard) key(taskID, userID string) string {
	return fmt.Sprintf("remind:%s:%s", taskID, userID)
}
