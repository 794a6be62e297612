package ports

import (
	"context"

	"github.com/crewboard/crewboard-api/internal/core/domain"
)

// ProjectTaskBreakdown counts a project's tasks per status plus overdue.
type ProjectTaskBreakdown struct {
	Todo            int64 `json:"todo"`
	InProgress      int64 `json:"in_progress"`
	Done            int64 `json:"done"`
	Total           int64 `json:"total"`
	Overdue         int64 `json:"overdue"`
	ProgressPercent int   `json:"progress_percent"`
}

// AdminProjectDetail is one project of an admin's portfolio with its task
// breakdown.
type AdminProjectDetail struct {
	ProjectID string               `json:"project_id"`
	Title     string               `json:"title"`
	OwnerID   string               `json:"owner_id"`
	MemberIDs []string             `json:"member_ids"`
	Stats     ProjectTaskBreakdown `json:"stats"`
}

// OrgStats aggregates organization-wide counts for dashboards.
type OrgStats struct {
	UsersByRole     map[string]int64    `json:"users_by_role"`
	TasksByStatus   map[string]int64    `json:"tasks_by_status"`
	TasksByPriority map[string]int64    `json:"tasks_by_priority"`
	ProjectsByOwner []OwnerProjectCount `json:"projects_by_owner"`
	TasksPerMonth   map[string]int64    `json:"tasks_per_month"`
}

// AdminService covers system-wide administration.
type AdminService interface {
	ListAdmins(ctx context.Context, actor Actor) ([]*domain.User, error)
	// DeleteAdmin removes an admin account and pulls it from every
	// project's member set. System owner only.
	DeleteAdmin(ctx context.Context, actor Actor, id string) error
	AdminProjects(ctx context.Context, actor Actor, id string) ([]AdminProjectDetail, error)
	OrgStats(ctx context.Context, actor Actor) (*OrgStats, error)
}
