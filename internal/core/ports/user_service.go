package ports

import (
	"context"

	"github.com/crewboard/crewboard-api/internal/core/domain"
)

// UserStats summarizes a user's footprint across projects and tasks.
type UserStats struct {
	TotalProjects   int `json:"total_projects"`
	OwnedProjects   int `json:"owned_projects"`
	MemberProjects  int `json:"member_projects"`
	TotalTasks      int `json:"total_tasks"`
	CompletedTasks  int `json:"completed_tasks"`
	InProgressTasks int `json:"in_progress_tasks"`
	TodoTasks       int `json:"todo_tasks"`
}

// UserWithStats pairs an account with its stats for the directory view.
type UserWithStats struct {
	User  *domain.User `json:"user"`
	Stats UserStats    `json:"stats"`
}

// UserService covers the user directory and per-user statistics.
type UserService interface {
	// ListUsers returns every account with stats. Admin or owner only.
	ListUsers(ctx context.Context, actor Actor) ([]*UserWithStats, error)
	// Stats returns stats for targetID. Admins and owners may ask about
	// anyone; everyone else only about themselves.
	Stats(ctx context.Context, actor Actor, targetID string) (*UserStats, error)
}
