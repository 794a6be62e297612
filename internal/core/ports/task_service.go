package ports

import (
	"context"
	"io"
	"time"

	"github.com/crewboard/crewboard-api/internal/core/domain"
)

// CreateTaskInput carries the fields for a new task. Status and Priority
// default to todo / medium when empty.
type CreateTaskInput struct {
	ProjectID  string
	Title      string
	Desc       string
	AssigneeID string
	Status     domain.TaskStatus
	Priority   domain.TaskPriority
	DueDate    *time.Time
}

// UpdateTaskInput is a partial update; nil fields are left untouched.
// An AssigneeID pointing at the empty string unassigns the task.
type UpdateTaskInput struct {
	Title      *string
	Desc       *string
	Status     *domain.TaskStatus
	Priority   *domain.TaskPriority
	AssigneeID *string
	DueDate    *time.Time
}

// Changed reports whether the update carries any field at all.
func (in UpdateTaskInput) Changed() bool {
	return in.Title != nil || in.Desc != nil || in.Status != nil ||
		in.Priority != nil || in.AssigneeID != nil || in.DueDate != nil
}

// ListTasksInput carries the task list filters. When ProjectID is empty the
// listing spans every project the actor can access.
type ListTasksInput struct {
	ProjectID string
	Status    string
	Priority  string
	Assignee  string
	DueFrom   time.Time
	DueTo     time.Time
	Search    string
	SortBy    string
	SortOrder string
}

// AttachmentUpload carries an incoming file to attach to a task.
type AttachmentUpload struct {
	OriginalName string
	MimeType     string
	Size         int64
	Content      io.Reader
}

// TaskService defines use-case operations for tasks, task comments, and
// attachments.
type TaskService interface {
	Create(ctx context.Context, actor Actor, in CreateTaskInput) (*domain.Task, error)
	Get(ctx context.Context, actor Actor, id string) (*domain.Task, error)
	List(ctx context.Context, actor Actor, in ListTasksInput) ([]*domain.Task, error)
	// Update applies a partial update and derives its side effects: a
	// status_changed notification for the assignee, a task_assigned
	// notification for a new assignee, and a task-updated broadcast to the
	// project channel.
	Update(ctx context.Context, actor Actor, id string, in UpdateTaskInput) (*domain.Task, error)
	// Delete removes the task, its comments, and its attachment files.
	Delete(ctx context.Context, actor Actor, id string) error

	ListComments(ctx context.Context, actor Actor, taskID string) ([]*CommentView, error)
	AddComment(ctx context.Context, actor Actor, taskID, text string) (*CommentView, error)

	AddAttachment(ctx context.Context, actor Actor, taskID string, up AttachmentUpload) (*domain.Task, error)
	RemoveAttachment(ctx context.Context, actor Actor, taskID, attachmentID string) (*domain.Task, error)
}
