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

// TaskService owns the task mutation pipeline: authorize, persist, then derive
// notifications and live broadcasts from the before/after delta.
type TaskService struct {
	tasks       ports.TaskRepository
	projects    ports.ProjectRepository
	comments    ports.CommentRepository
	users       ports.UserRepository
	guard       access.Guard
	notifier    ports.NotificationService
	broadcaster ports.Broadcaster
	files       ports.FileStore
	log         zerolog.Logger
}

func NewTaskService(
	tasks ports.TaskRepository,
	projects ports.ProjectRepository,
	comments ports.CommentRepository,
	users ports.UserRepository,
	notifier ports.NotificationService,
	broadcaster ports.Broadcaster,
	files ports.FileStore,
	log zerolog.Logger,
) *TaskService {
	return &TaskService{
		tasks:       tasks,
		projects:    projects,
		comments:    comments,
		users:       users,
		notifier:    notifier,
		broadcaster: broadcaster,
		files:       files,
		log:         log,
	}
}

// loadTaskProject fetches a task together with its owning project.
func (s *TaskService) loadTaskProject(ctx context.Context, taskID string) (*domain.Task, *domain.Project, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	project, err := s.projects.FindByID(ctx, task.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return task, project, nil
}

func (s *TaskService) Create(ctx context.Context, actor ports.Actor, in ports.CreateTaskInput) (*domain.Task, error) {
	project, err := s.projects.FindByID(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := guarded(s.guard.CanCreateTask(subject(actor), project)); err != nil {
		return nil, err
	}

	if in.Status == "" {
		in.Status = domain.StatusTodo
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if in.Title == "" || !in.Status.Valid() || !in.Priority.Valid() {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Desc:        in.Desc,
		AssigneeID:  in.AssigneeID,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		Attachments: []domain.Attachment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		s.log.Error().Err(err).Str("project_id", in.ProjectID).Msg("failed to create task")
		return nil, err
	}

	if created.AssigneeID != "" && created.AssigneeID != actor.ID {
		s.notifyAssigned(ctx, created, project, actor)
	}

	s.log.Info().
		Str("task_id", created.ID).
		Str("project_id", project.ID).
		Msg("task created")

	return created, nil
}

func (s *TaskService) Get(ctx context.Context, actor ports.Actor, id string) (*domain.Task, error) {
	task, project, err := s.loadTaskProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guarded(s.guard.CanReadProject(subject(actor), project)); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, actor ports.Actor, in ports.ListTasksInput) ([]*domain.Task, error) {
	var projectIDs []string
	if in.ProjectID != "" {
		project, err := s.projects.FindByID(ctx, in.ProjectID)
		if err != nil {
			return nil, err
		}
		if err := guarded(s.guard.CanReadProject(subject(actor), project)); err != nil {
			return nil, err
		}
		projectIDs = []string{in.ProjectID}
	} else {
		projects, err := s.projects.ListForUser(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		projectIDs = make([]string, 0, len(projects))
		for _, p := range projects {
			projectIDs = append(projectIDs, p.ID)
		}
		if len(projectIDs) == 0 {
			return []*domain.Task{}, nil
		}
	}

	return s.tasks.List(ctx, ports.TaskListFilter{
		ProjectIDs: projectIDs,
		Status:     in.Status,
		Priority:   in.Priority,
		Assignee:   in.Assignee,
		DueFrom:    in.DueFrom,
		DueTo:      in.DueTo,
		Search:     in.Search,
		SortBy:     in.SortBy,
		SortOrder:  in.SortOrder,
	})
}

// Update applies a partial update and runs the derived side effects in fixed
// order: persist, then status-change notification, then assignee-change
// notification, then the project broadcast. The two notifications are
// independent and may both fire on a single update.
func (s *TaskService) Update(ctx context.Context, actor ports.Actor, id string, in ports.UpdateTaskInput) (*domain.Task, error) {
	if !in.Changed() {
		return nil, domain.ErrInvalidInput
	}

	task, project, err := s.loadTaskProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := guarded(s.guard.CanUpdateTask(subject(actor), project, task)); err != nil {
		return nil, err
	}

	oldStatus := task.Status
	oldAssignee := task.AssigneeID

	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Desc != nil {
		task.Desc = *in.Desc
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, domain.ErrInvalidInput
		}
		task.Status = *in.Status
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, domain.ErrInvalidInput
		}
		task.Priority = *in.Priority
	}
	if in.AssigneeID != nil {
		task.AssigneeID = *in.AssigneeID
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.tasks.Update(ctx, task); err != nil {
		s.log.Error().Err(err).Str("task_id", id).Msg("failed to update task")
		return nil, err
	}

	if task.Status != oldStatus && task.AssigneeID != "" {
		if _, err := s.notifier.Notify(ctx, task.AssigneeID, domain.NotifyStatusChanged, map[string]any{
			"task_id":       task.ID,
			"task_title":    task.Title,
			"old_status":    string(oldStatus),
			"new_status":    string(task.Status),
			"project_id":    project.ID,
			"project_title": project.Title,
		}, ""); err != nil {
			s.log.Error().Err(err).Str("task_id", task.ID).Msg("failed to notify status change")
		}
	}

	if task.AssigneeID != "" && task.AssigneeID != oldAssignee && task.AssigneeID != actor.ID {
		s.notifyAssigned(ctx, task, project, actor)
	}

	s.broadcaster.Publish(ports.ProjectChannel(project.ID), ports.EventTaskUpdated, task)

	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, actor ports.Actor, id string) error {
	task, project, err := s.loadTaskProject(ctx, id)
	if err != nil {
		return err
	}
	if err := guarded(s.guard.CanDeleteTask(subject(actor), project)); err != nil {
		return err
	}

	if err := s.comments.DeleteByTask(ctx, id); err != nil {
		return fmt.Errorf("delete task comments: %w", err)
	}
	for _, att := range task.Attachments {
		if err := s.files.Remove(att.FileName); err != nil {
			s.log.Warn().Err(err).Str("filename", att.FileName).Msg("failed to remove attachment file")
		}
	}
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}

	s.broadcaster.Publish(ports.ProjectChannel(project.ID), ports.EventTaskDeleted, map[string]any{"task_id": id})

	s.log.Info().Str("task_id", id).Str("project_id", project.ID).Msg("task deleted")
	return nil
}

func (s *TaskService) ListComments(ctx context.Context, actor ports.Actor, taskID string) ([]*ports.CommentView, error) {
	_, project, err := s.loadTaskProject(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := guarded(s.guard.CanReadProject(subject(actor), project)); err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return resolveAuthors(ctx, s.users, comments)
}

func (s *TaskService) AddComment(ctx context.Context, actor ports.Actor, taskID, text string) (*ports.CommentView, error) {
	if text == "" {
		return nil, domain.ErrInvalidInput
	}

	task, project, err := s.loadTaskProject(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := guarded(s.guard.CanReadProject(subject(actor), project)); err != nil {
		return nil, err
	}

	comment, err := s.comments.Create(ctx, &domain.Comment{
		Kind:      domain.CommentOnTask,
		TaskID:    taskID,
		AuthorID:  actor.ID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	// Notify the assignee unless they wrote the comment themselves.
	if task.AssigneeID != "" && task.AssigneeID != actor.ID {
		if _, err := s.notifier.Notify(ctx, task.AssigneeID, domain.NotifyCommentAdded, map[string]any{
			"task_id":       task.ID,
			"task_title":    task.Title,
			"comment_id":    comment.ID,
			"comment_text":  comment.Text,
			"project_id":    project.ID,
			"project_title": project.Title,
			"author_id":     actor.ID,
		}, ""); err != nil {
			s.log.Error().Err(err).Str("task_id", task.ID).Msg("failed to notify comment")
		}
	}

	s.broadcaster.Publish(ports.ProjectChannel(project.ID), ports.EventCommentAdded, comment)

	author, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return &ports.CommentView{Comment: comment}, nil
	}
	return &ports.CommentView{Comment: comment, Author: author}, nil
}

func (s *TaskService) AddAttachment(ctx context.Context, actor ports.Actor, taskID string, up ports.AttachmentUpload) (*domain.Task, error) {
	if up.OriginalName == "" || up.Content == nil {
		return nil, domain.ErrInvalidInput
	}

	task, project, err := s.loadTaskProject(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := guarded(s.guard.CanReadProject(subject(actor), project)); err != nil {
		return nil, err
	}

	stored, err := s.files.Save(up.OriginalName, up.Content)
	if err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	att := domain.Attachment{
		ID:           newID(),
		FileName:     stored,
		OriginalName: up.OriginalName,
		MimeType:     up.MimeType,
		Size:         up.Size,
		UploadedBy:   actor.ID,
		UploadedAt:   time.Now().UTC(),
	}
	if err := s.tasks.AddAttachment(ctx, taskID, att); err != nil {
		_ = s.files.Remove(stored)
		return nil, err
	}

	task.Attachments = append(task.Attachments, att)
	s.broadcaster.Publish(ports.ProjectChannel(project.ID), ports.EventTaskUpdated, task)
	return task, nil
}

func (s *TaskService) RemoveAttachment(ctx context.Context, actor ports.Actor, taskID, attachmentID string) (*domain.Task, error) {
	task, project, err := s.loadTaskProject(ctx, taskID)
	if err != nil {
		return nil, err
	}

	att := task.AttachmentByID(attachmentID)
	if att == nil {
		return nil, domain.ErrAttachmentNotFound
	}
	if err := guarded(s.guard.CanDeleteAttachment(subject(actor), project, att)); err != nil {
		return nil, err
	}

	if err := s.files.Remove(att.FileName); err != nil {
		s.log.Warn().Err(err).Str("filename", att.FileName).Msg("failed to remove attachment file")
	}
	if err := s.tasks.RemoveAttachment(ctx, taskID, attachmentID); err != nil {
		return nil, err
	}

	kept := task.Attachments[:0]
	for _, a := range task.Attachments {
		if a.ID != attachmentID {
			kept = append(kept, a)
		}
	}
	task.Attachments = kept

	s.broadcaster.Publish(ports.ProjectChannel(project.ID), ports.EventTaskUpdated, task)
	return task, nil
}

// notifyAssigned fires the task_assigned notification for the task's current
// assignee.
func (s *TaskService) notifyAssigned(ctx context.Context, task *domain.Task, project *domain.Project, actor ports.Actor) {
	if _, err := s.notifier.Notify(ctx, task.AssigneeID, domain.NotifyTaskAssigned, map[string]any{
		"task_id":       task.ID,
		"task_title":    task.Title,
		"project_id":    project.ID,
		"project_title": project.Title,
		"assigned_by":   actor.ID,
	}, ""); err != nil {
		s.log.Error().Err(err).Str("task_id", task.ID).Msg("failed to notify assignment")
	}
}

// resolveAuthors decorates comments with their author records. Unknown
// authors (deleted accounts) leave Author nil.
func resolveAuthors(ctx context.Context, users ports.UserRepository, comments []*domain.Comment) ([]*ports.CommentView, error) {
	ids := make([]string, 0, len(comments))
	seen := map[string]struct{}{}
	for _, c := range comments {
		if _, ok := seen[c.AuthorID]; !ok {
			seen[c.AuthorID] = struct{}{}
			ids = append(ids, c.AuthorID)
		}
	}

	byID := map[string]*domain.User{}
	if len(ids) > 0 {
		authors, err := users.FindByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, u := range authors {
			byID[u.ID] = u
		}
	}

	views := make([]*ports.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, &ports.CommentView{Comment: c, Author: byID[c.AuthorID]})
	}
	return views, nil
}
