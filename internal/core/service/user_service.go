package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/crewboard/crewboard-api/internal/core/access"
	"github.com/crewboard/crewboard-api/internal/core/domain"
	"github.com/crewboard/crewboard-api/internal/core/ports"
)

// UserService serves the user directory and per-user statistics.
type UserService struct {
	users    ports.UserRepository
	projects ports.ProjectRepository
	tasks    ports.TaskRepository
	guard    access.Guard
	log      zerolog.Logger
}

func NewUserService(users ports.UserRepository, projects ports.ProjectRepository, tasks ports.TaskRepository, log zerolog.Logger) *UserService {
	return &UserService{users: users, projects: projects, tasks: tasks, log: log}
}

// ListUsers returns every account with its stats. Admin or owner only.
func (s *UserService) ListUsers(ctx context.Context, actor ports.Actor) ([]*ports.UserWithStats, error) {
	if err := guarded(s.guard.CanListUsers(subject(actor))); err != nil {
		return nil, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*ports.UserWithStats, 0, len(users))
	for _, u := range users {
		stats, err := s.statsFor(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, &ports.UserWithStats{User: u, Stats: *stats})
	}
	return out, nil
}

// Stats returns footprint stats for targetID. Non-elevated actors may only
// ask about themselves.
func (s *UserService) Stats(ctx context.Context, actor ports.Actor, targetID string) (*ports.UserStats, error) {
	if targetID == "" {
		targetID = actor.ID
	}
	if err := guarded(s.guard.CanViewUserStats(subject(actor), targetID)); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		return nil, err
	}
	return s.statsFor(ctx, targetID)
}

func (s *UserService) statsFor(ctx context.Context, userID string) (*ports.UserStats, error) {
	projects, err := s.projects.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &ports.UserStats{TotalProjects: len(projects)}
	for _, p := range projects {
		if p.IsOwner(userID) {
			stats.OwnedProjects++
		} else {
			stats.MemberProjects++
		}
	}

	projectIDs := make([]string, 0, len(projects))
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
	}

	tasks := []*domain.Task{}
	if len(projectIDs) > 0 {
		tasks, err = s.tasks.List(ctx, ports.TaskListFilter{ProjectIDs: projectIDs})
		if err != nil {
			return nil, err
		}
	}

	for _, t := range tasks {
		stats.TotalTasks++
		switch t.Status {
		case domain.StatusDone:
			stats.CompletedTasks++
		case domain.StatusInProgress:
			stats.InProgressTasks++
		case domain.StatusTodo:
			stats.TodoTasks++
		}
	}
	return stats, nil
}
