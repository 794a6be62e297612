package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/crewboard/crewboard-api/internal/core/access"
	"github.com/crewboard/crewboard-api/internal/core/domain"
	"github.com/crewboard/crewboard-api/internal/core/ports"
)

// AdminService covers system-wide administration: the admin directory,
// admin account deletion, and organization dashboards.
type AdminService struct {
	users    ports.UserRepository
	projects ports.ProjectRepository
	tasks    ports.TaskRepository
	guard    access.Guard
	log      zerolog.Logger
}

func NewAdminService(
	users ports.UserRepository,
	projects ports.ProjectRepository,
	tasks ports.TaskRepository,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{users: users, projects: projects, tasks: tasks, log: log}
}

func (s *AdminService) ListAdmins(ctx context.Context, _ ports.Actor) ([]*domain.User, error) {
	return s.users.ListByRole(ctx, domain.RoleAdmin)
}

// DeleteAdmin removes an admin account and pulls it out of every project's
// member set. Only a system owner may call it.
func (s *AdminService) DeleteAdmin(ctx context.Context, actor ports.Actor, id string) error {
	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := guarded(s.guard.CanDeleteAdminAccount(subject(actor), target)); err != nil {
		return err
	}

	if err := s.projects.RemoveMemberEverywhere(ctx, target.ID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, target.ID); err != nil {
		return err
	}

	s.log.Info().Str("user_id", target.ID).Str("deleted_by", actor.ID).Msg("admin account deleted")
	return nil
}

// AdminProjects returns the target user's projects with per-project task
// breakdowns and overdue counts.
func (s *AdminService) AdminProjects(ctx context.Context, _ ports.Actor, id string) ([]ports.AdminProjectDetail, error) {
	projects, err := s.projects.ListForUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return []ports.AdminProjectDetail{}, nil
	}

	projectIDs := make([]string, 0, len(projects))
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
	}

	statusCounts, err := s.tasks.CountByStatus(ctx, projectIDs)
	if err != nil {
		return nil, err
	}
	overdue, err := s.tasks.CountOverdue(ctx, projectIDs, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	byProject := map[string]*ports.ProjectTaskBreakdown{}
	for _, row := range statusCounts {
		b := byProject[row.ProjectID]
		if b == nil {
			b = &ports.ProjectTaskBreakdown{}
			byProject[row.ProjectID] = b
		}
		switch row.Status {
		case domain.StatusTodo:
			b.Todo += row.Count
		case domain.StatusInProgress:
			b.InProgress += row.Count
		case domain.StatusDone:
			b.Done += row.Count
		}
		b.Total += row.Count
	}

	details := make([]ports.AdminProjectDetail, 0, len(projects))
	for _, p := range projects {
		b := byProject[p.ID]
		if b == nil {
			b = &ports.ProjectTaskBreakdown{}
		}
		b.Overdue = overdue[p.ID]
		if b.Total > 0 {
			b.ProgressPercent = int(float64(b.Done)/float64(b.Total)*100 + 0.5)
		}
		details = append(details, ports.AdminProjectDetail{
			ProjectID: p.ID,
			Title:     p.Title,
			OwnerID:   p.OwnerID,
			MemberIDs: p.MemberIDs,
			Stats:     *b,
		})
	}
	return details, nil
}

// OrgStats aggregates organization-wide counts for dashboards.
func (s *AdminService) OrgStats(ctx context.Context, _ ports.Actor) (*ports.OrgStats, error) {
	usersByRole, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.tasks.CountByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}
	tasksByStatus := map[string]int64{}
	for _, row := range statusCounts {
		tasksByStatus[string(row.Status)] += row.Count
	}

	tasksByPriority, err := s.tasks.CountByPriority(ctx)
	if err != nil {
		return nil, err
	}

	projectsByOwner, err := s.projects.CountPerOwner(ctx, 10)
	if err != nil {
		return nil, err
	}

	sixMonthsAgo := time.Now().UTC().AddDate(0, -5, 0)
	tasksPerMonth, err := s.tasks.CountCreatedPerMonth(ctx, sixMonthsAgo)
	if err != nil {
		return nil, err
	}

	return &ports.OrgStats{
		UsersByRole:     usersByRole,
		TasksByStatus:   tasksByStatus,
		TasksByPriority: tasksByPriority,
		ProjectsByOwner: projectsByOwner,
		TasksPerMonth:   tasksPerMonth,
	}, nil
}
