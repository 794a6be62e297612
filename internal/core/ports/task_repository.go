package ports

import (
	"context"
	"time"

	"github.com/crewboard/crewboard-api/internal/core/domain"
)

// TaskListFilter narrows and orders the task list query.
type TaskListFilter struct {
	ProjectIDs []string
	Status     string
	Priority   string
	// Assignee filters by assignee id; the literal "unassigned" matches
	// tasks with no assignee.
	Assignee string
	DueFrom  time.Time
	DueTo    time.Time
	// Search matches title or description, case-insensitive.
	Search    string
	SortBy    string
	SortOrder string
}

// TaskStatusCount is one row of a tasks-by-status aggregation, optionally
// scoped to a project.
type TaskStatusCount struct {
	ProjectID string
	Status    domain.TaskStatus
	Count     int64
}

// TaskRepository persists tasks and their embedded attachments.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskListFilter) ([]*domain.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
	DeleteByProject(ctx context.Context, projectID string) error

	AddAttachment(ctx context.Context, taskID string, att domain.Attachment) error
	RemoveAttachment(ctx context.Context, taskID, attachmentID string) error

	// FindDueBetween returns tasks with a due date inside [from, to] that are
	// not done. Drives the reminder sweep.
	FindDueBetween(ctx context.Context, from, to time.Time) ([]*domain.Task, error)

	// CountByStatus aggregates task counts by status across the given
	// projects (all projects when the slice is empty).
	CountByStatus(ctx context.Context, projectIDs []string) ([]TaskStatusCount, error)
	// CountByPriority aggregates task counts by priority across all projects.
	CountByPriority(ctx context.Context) (map[string]int64, error)
	// CountOverdue returns per-project counts of tasks past their due date
	// and not done.
	CountOverdue(ctx context.Context, projectIDs []string, now time.Time) (map[string]int64, error)
	// CountCreatedPerMonth aggregates task creation counts per calendar
	// month since the given time, keyed by "YYYY-MM".
	CountCreatedPerMonth(ctx context.Context, since time.Time) (map[string]int64, error)
}
