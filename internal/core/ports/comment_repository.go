package ports

import (
	"context"

	"github.com/crewboard/crewboard-api/internal/core/domain"
)

// CommentRepository persists task and project comments in one collection.
type CommentRepository interface {
	Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error)
	ListByTask(ctx context.Context, taskID string) ([]*domain.Comment, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.Comment, error)
	DeleteByTask(ctx context.Context, taskID string) error
	// DeleteByProject removes the project's own comments and the comments of
	// the given tasks in one sweep (project deletion cascade).
	DeleteByProject(ctx context.Context, projectID string, taskIDs []string) error
}
