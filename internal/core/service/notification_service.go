package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/crewboard/crewboard-api/internal/api/metrics"
	"github.com/crewboard/crewboard-api/internal/core/domain"
	"github.com/crewboard/crewboard-api/internal/core/ports"
)

const listLimit = 50

// NotificationService persists notification records and pushes them to live
// subscribers. The record is the durable copy; the push is at-most-once.
type NotificationService struct {
	repo        ports.NotificationRepository
	broadcaster ports.Broadcaster
	log         zerolog.Logger
}

func NewNotificationService(repo ports.NotificationRepository, broadcaster ports.Broadcaster, log zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, broadcaster: broadcaster, log: log}
}

// Notify creates a notification record and attempts a live push to the
// target's user channel. The push cannot fail the call.
func (s *NotificationService) Notify(ctx context.Context, userID string, typ domain.NotificationType, payload map[string]any, message string) (*domain.Notification, error) {
	n := &domain.Notification{
		UserID:    userID,
		Type:      typ,
		Payload:   payload,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, n)
	if err != nil {
		return nil, err
	}
	metrics.NotificationsCreatedTotal.WithLabelValues(string(typ)).Inc()

	s.broadcaster.Publish(ports.UserChannel(userID), ports.EventNotification, created)

	s.log.Debug().
		Str("user_id", userID).
		Str("type", string(typ)).
		Msg("notification dispatched")

	return created, nil
}

// FanoutProjectComment notifies every member and the owner about an
// admin-authored project comment, excluding the commenter. Each recipient is
// independent: a failure is logged and counted, and the loop continues.
func (s *NotificationService) FanoutProjectComment(ctx context.Context, p *domain.Project, author ports.Actor, c *domain.Comment) {
	recipients := make([]string, 0, len(p.MemberIDs)+1)
	seen := map[string]struct{}{author.ID: {}}
	for _, id := range append(append([]string{}, p.MemberIDs...), p.OwnerID) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}

	payload := map[string]any{
		"project_id":    p.ID,
		"project_title": p.Title,
		"comment_id":    c.ID,
		"text":          c.Text,
		"author_id":     author.ID,
		"author_name":   author.Name,
	}

	for _, userID := range recipients {
		if _, err := s.Notify(ctx, userID, domain.NotifyCommentAdded, payload, ""); err != nil {
			metrics.FanoutErrorsTotal.Inc()
			s.log.Error().Err(err).
				Str("user_id", userID).
				Str("project_id", p.ID).
				Msg("failed to notify project comment recipient")
		}
	}
}

func (s *NotificationService) List(ctx context.Context, actor ports.Actor, read *bool) ([]*domain.Notification, error) {
	return s.repo.ListByUser(ctx, actor.ID, read, listLimit)
}

func (s *NotificationService) MarkRead(ctx context.Context, actor ports.Actor, id string) (*domain.Notification, error) {
	return s.repo.MarkRead(ctx, id, actor.ID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor ports.Actor) error {
	return s.repo.MarkAllRead(ctx, actor.ID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor ports.Actor) (int64, error) {
	return s.repo.CountUnread(ctx, actor.ID)
}
