package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/crewboard/crewboard-api/internal/core/access"
	"github.com/crewboard/crewboard-api/internal/core/domain"
	"github.com/crewboard/crewboard-api/internal/core/ports"
)

// ProjectService implements project CRUD, membership, and project comments.
type ProjectService struct {
	projects    ports.ProjectRepository
	tasks       ports.TaskRepository
	comments    ports.CommentRepository
	users       ports.UserRepository
	guard       access.Guard
	notifier    ports.NotificationService
	broadcaster ports.Broadcaster
	files       ports.FileStore
	log         zerolog.Logger
}

func NewProjectService(
	projects ports.ProjectRepository,
	tasks ports.TaskRepository,
	comments ports.CommentRepository,
	users ports.UserRepository,
	notifier ports.NotificationService,
	broadcaster ports.Broadcaster,
	files ports.FileStore,
	log zerolog.Logger,
) *ProjectService {
	return &ProjectService{
		projects:    projects,
		tasks:       tasks,
		comments:    comments,
		users:       users,
		notifier:    notifier,
		broadcaster: broadcaster,
		files:       files,
		log:         log,
	}
}

// view resolves the project's people and computes task progress.
func (s *ProjectService) view(ctx context.Context, p *domain.Project) (*ports.ProjectView, error) {
	owner, err := s.users.FindByID(ctx, p.OwnerID)
	if err != nil && err != domain.ErrUserNotFound {
		return nil, err
	}

	var members []*domain.User
	if len(p.MemberIDs) > 0 {
		found, err := s.users.FindByIDs(ctx, p.MemberIDs)
		if err != nil {
			return nil, err
		}
		// The store returns members in arbitrary order; display order is the
		// order they joined.
		byID := make(map[string]*domain.User, len(found))
		for _, u := range found {
			byID[u.ID] = u
		}
		for _, id := range p.MemberIDs {
			if u, ok := byID[id]; ok {
				members = append(members, u)
			}
		}
	}

	tasks, err := s.tasks.ListByProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	total := len(tasks)
	done := 0
	for _, t := range tasks {
		if t.Status == domain.StatusDone {
			done++
		}
	}
	progress := 0
	if total > 0 {
		progress = int(float64(done)/float64(total)*100 + 0.5)
	}

	return &ports.ProjectView{
		Project: p,
		Owner:   owner,
		Members: members,
		Stats:   domain.ProjectStats{TotalTasks: total, DoneTasks: done, Progress: progress},
	}, nil
}

func (s *ProjectService) Create(ctx context.Context, actor ports.Actor, in ports.CreateProjectInput) (*ports.ProjectView, error) {
	if in.Title == "" {
		return nil, domain.ErrInvalidInput
	}

	project := &domain.Project{
		Title:       in.Title,
		Description: in.Description,
		OwnerID:     actor.ID,
		MemberIDs:   []string{},
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.projects.Create(ctx, project)
	if err != nil {
		s.log.Error().Err(err).Str("owner_id", actor.ID).Msg("failed to create project")
		return nil, err
	}

	s.log.Info().Str("project_id", created.ID).Str("owner_id", actor.ID).Msg("project created")
	return s.view(ctx, created)
}

func (s *ProjectService) List(ctx context.Context, actor ports.Actor) ([]*ports.ProjectView, error) {
	projects, err := s.projects.ListForUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	views := make([]*ports.ProjectView, 0, len(projects))
	for _, p := range projects {
		v, err := s.view(ctx, p)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *ProjectService) Get(ctx context.Context, actor ports.Actor, id string) (*ports.ProjectView, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guarded(s.guard.CanReadProject(subject(actor), project)); err != nil {
		return nil, err
	}
	return s.view(ctx, project)
}

func (s *ProjectService) Update(ctx context.Context, actor ports.Actor, id string, in ports.UpdateProjectInput) (*ports.ProjectView, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guarded(s.guard.CanUpdateProject(subject(actor), project)); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, domain.ErrInvalidInput
		}
		project.Title = *in.Title
	}
	if in.Description != nil {
		project.Description = *in.Description
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return s.view(ctx, project)
}

// Delete removes the project and cascades: tasks, task comments, project
// comments, and attachment files on disk.
func (s *ProjectService) Delete(ctx context.Context, actor ports.Actor, id string) error {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := guarded(s.guard.CanDeleteProject(subject(actor), project)); err != nil {
		return err
	}

	tasks, err := s.tasks.ListByProject(ctx, id)
	if err != nil {
		return err
	}
	taskIDs := make([]string, 0, len(tasks))
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
		for _, att := range t.Attachments {
			if err := s.files.Remove(att.FileName); err != nil {
				s.log.Warn().Err(err).Str("filename", att.FileName).Msg("failed to remove attachment file")
			}
		}
	}

	if err := s.comments.DeleteByProject(ctx, id, taskIDs); err != nil {
		return fmt.Errorf("delete project comments: %w", err)
	}
	if err := s.tasks.DeleteByProject(ctx, id); err != nil {
		return fmt.Errorf("delete project tasks: %w", err)
	}
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info().Str("project_id", id).Msg("project deleted")
	return nil
}

func (s *ProjectService) Invite(ctx context.Context, actor ports.Actor, projectID string, in ports.InviteMemberInput) (*ports.ProjectView, error) {
	if in.Email == "" {
		return nil, domain.ErrInvalidInput
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	invitee, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}

	if err := guarded(s.guard.CanInvite(subject(actor), project, invitee)); err != nil {
		return nil, err
	}

	if project.HasMember(invitee.ID) || project.IsOwner(invitee.ID) {
		return nil, domain.ErrAlreadyMember
	}

	if err := s.projects.AddMember(ctx, projectID, invitee.ID); err != nil {
		return nil, err
	}
	project.MemberIDs = append(project.MemberIDs, invitee.ID)

	message := in.Message
	if message == "" {
		message = fmt.Sprintf("You were invited to join project %q by %s", project.Title, actor.Name)
	}
	if _, err := s.notifier.Notify(ctx, invitee.ID, domain.NotifyProjectInvite, map[string]any{
		"project_id":    project.ID,
		"project_title": project.Title,
		"invited_by":    actor.ID,
	}, message); err != nil {
		s.log.Error().Err(err).Str("user_id", invitee.ID).Msg("failed to notify invite")
	}

	return s.view(ctx, project)
}

func (s *ProjectService) RemoveMember(ctx context.Context, actor ports.Actor, projectID, memberID string) (*ports.ProjectView, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	member, err := s.users.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if err := guarded(s.guard.CanRemoveMember(subject(actor), project, member)); err != nil {
		return nil, err
	}

	// Repository fails with ErrMemberNotFound when the user is not in the
	// set; removing twice must not be a silent no-op.
	if err := s.projects.RemoveMember(ctx, projectID, memberID); err != nil {
		return nil, err
	}

	kept := project.MemberIDs[:0]
	for _, id := range project.MemberIDs {
		if id != memberID {
			kept = append(kept, id)
		}
	}
	project.MemberIDs = kept

	return s.view(ctx, project)
}

func (s *ProjectService) ListComments(ctx context.Context, actor ports.Actor, projectID string) ([]*ports.CommentView, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := guarded(s.guard.CanReadProject(subject(actor), project)); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return resolveAuthors(ctx, s.users, comments)
}

// AddComment posts a project comment and broadcasts it to the project
// channel. When the author is a system admin, every member and the owner
// additionally gets a personal notification.
func (s *ProjectService) AddComment(ctx context.Context, actor ports.Actor, projectID, text string) (*ports.CommentView, error) {
	if text == "" {
		return nil, domain.ErrInvalidInput
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := guarded(s.guard.CanCommentOnProject(subject(actor), project)); err != nil {
		return nil, err
	}

	comment, err := s.comments.Create(ctx, &domain.Comment{
		Kind:      domain.CommentOnProject,
		ProjectID: projectID,
		AuthorID:  actor.ID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.broadcaster.Publish(ports.ProjectChannel(projectID), ports.EventProjectComment, comment)

	if actor.Role == domain.RoleAdmin {
		s.notifier.FanoutProjectComment(ctx, project, actor, comment)
	}

	author, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return &ports.CommentView{Comment: comment}, nil
	}
	return &ports.CommentView{Comment: comment, Author: author}, nil
}
