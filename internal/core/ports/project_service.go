package ports

import (
	"context"

	"github.com/crewboard/crewboard-api/internal/core/domain"
)

// CreateProjectInput carries the fields for a new project.
type CreateProjectInput struct {
	Title       string
	Description string
}

// UpdateProjectInput is a partial update; nil fields are left untouched.
// Member-set changes go through Invite / RemoveMember, not here.
type UpdateProjectInput struct {
	Title       *string
	Description *string
}

// InviteMemberInput identifies the invitee by email; Message is an optional
// free-text note carried on the invite notification.
type InviteMemberInput struct {
	Email   string
	Message string
}

// ProjectView is a project resolved with its people and task progress.
type ProjectView struct {
	Project *domain.Project
	Owner   *domain.User
	Members []*domain.User
	Stats   domain.ProjectStats
}

// CommentView is a comment resolved with its author.
type CommentView struct {
	Comment *domain.Comment
	Author  *domain.User
}

// ProjectService defines use-case operations for projects, membership, and
// project comments.
type ProjectService interface {
	Create(ctx context.Context, actor Actor, in CreateProjectInput) (*ProjectView, error)
	List(ctx context.Context, actor Actor) ([]*ProjectView, error)
	Get(ctx context.Context, actor Actor, id string) (*ProjectView, error)
	Update(ctx context.Context, actor Actor, id string, in UpdateProjectInput) (*ProjectView, error)
	// Delete removes the project and cascades to its tasks, their comments
	// and attachment files, and the project's own comments. Owner only.
	Delete(ctx context.Context, actor Actor, id string) error

	Invite(ctx context.Context, actor Actor, projectID string, in InviteMemberInput) (*ProjectView, error)
	RemoveMember(ctx context.Context, actor Actor, projectID, memberID string) (*ProjectView, error)

	ListComments(ctx context.Context, actor Actor, projectID string) ([]*CommentView, error)
	// AddComment posts a project comment. When the author is a system admin,
	// every member and the owner (excluding the author) is notified
	// individually.
	AddComment(ctx context.Context, actor Actor, projectID, text string) (*CommentView, error)
}
