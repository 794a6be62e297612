package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/crewboard/crewboard-api/internal/api/metrics"
	"github.com/crewboard/crewboard-api/internal/core/domain"
	"github.com/crewboard/crewboard-api/internal/core/ports"
)

// dueWindow is how far ahead the sweep looks for approaching due dates.
const dueWindow = 24 * time.Hour

// ReminderWindow abstracts the time-windowed idempotence store (Redis).
// A (task, user) pair marked once is Seen until the window expires.
type ReminderWindow interface {
	Seen(ctx context.Context, taskID, userID string) (bool, error)
	Mark(ctx context.Context, taskID, userID string) error
}

// ReminderSink receives due-soon tasks for delivery. Implemented by the
// queue dispatcher in production and called synchronously in tests.
type ReminderSink interface {
	Enqueue(task *domain.Task)
}

// ReminderService finds tasks approaching their due date and sends the
// assignee a due_date_reminder, at most once per dedup window.
type ReminderService struct {
	tasks    ports.TaskRepository
	projects ports.ProjectRepository
	window   ReminderWindow
	notifier ports.NotificationService
	log      zerolog.Logger
}

func NewReminderService(
	tasks ports.TaskRepository,
	projects ports.ProjectRepository,
	window ReminderWindow,
	notifier ports.NotificationService,
	log zerolog.Logger,
) *ReminderService {
	return &ReminderService{
		tasks:    tasks,
		projects: projects,
		window:   window,
		notifier: notifier,
		log:      log,
	}
}

// Sweep finds tasks due within the next 24 hours that are not done and have
// an assignee, and hands each to the sink.
func (s *ReminderService) Sweep(ctx context.Context, sink ReminderSink) error {
	now := time.Now().UTC()
	due, err := s.tasks.FindDueBetween(ctx, now, now.Add(dueWindow))
	if err != nil {
		return err
	}

	for _, task := range due {
		if task.AssigneeID == "" {
			continue
		}
		sink.Enqueue(task)
	}

	s.log.Debug().Int("candidates", len(due)).Msg("reminder sweep complete")
	return nil
}

// Deliver evaluates one candidate task. Within the dedup window the reminder
// is skipped; window errors fail open and the reminder is processed anyway.
func (s *ReminderService) Deliver(ctx context.Context, task *domain.Task) error {
	seen, err := s.window.Seen(ctx, task.ID, task.AssigneeID)
	if err != nil {
		s.log.Warn().Err(err).Str("task_id", task.ID).Msg("reminder window check failed, processing anyway")
	} else if seen {
		metrics.RemindersTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	payload := map[string]any{
		"task_id":    task.ID,
		"task_title": task.Title,
		"due_date":   task.DueDate,
		"project_id": task.ProjectID,
	}
	if project, err := s.projects.FindByID(ctx, task.ProjectID); err == nil {
		payload["project_title"] = project.Title
	}

	if _, err := s.notifier.Notify(ctx, task.AssigneeID, domain.NotifyDueDateReminder, payload, ""); err != nil {
		return err
	}

	// Mark only after the notification exists, so a failed delivery is
	// retried on the next sweep instead of being suppressed for the window.
	if markErr := s.window.Mark(ctx, task.ID, task.AssigneeID); markErr != nil {
		s.log.Warn().Err(markErr).Str("task_id", task.ID).Msg("failed to mark reminder window")
	}

	metrics.RemindersTotal.WithLabelValues("sent").Inc()
	return nil
}

// Run sweeps on the given interval until ctx is cancelled. Defaults to
// hourly.
func (s *ReminderService) Run(ctx context.Context, interval time.Duration, sink ReminderSink) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx, sink); err != nil {
				s.log.Error().Err(err).Msg("reminder sweep failed")
			}
		}
	}
}
