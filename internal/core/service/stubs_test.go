package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/crewboard/crewboard-api/internal/core/domain"
	"github.com/crewboard/crewboard-api/internal/core/ports"
)

// In-memory fakes shared by the service tests. Each fake keeps its records in
// a map and allows per-method error injection where a test needs a failure.

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*domain.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	created := *u
	created.ID = "u" + strconv.Itoa(len(r.users)+1)
	r.users[created.ID] = &created
	return &created, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	out := []*domain.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) CountByRole(_ context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, u := range r.users {
		out[string(u.Role)]++
	}
	return out, nil
}

type fakeProjectRepo struct {
	projects map[string]*domain.Project
}

func newFakeProjectRepo(projects ...*domain.Project) *fakeProjectRepo {
	r := &fakeProjectRepo{projects: map[string]*domain.Project{}}
	for _, p := range projects {
		r.projects[p.ID] = p
	}
	return r
}

func (r *fakeProjectRepo) Create(_ context.Context, p *domain.Project) (*domain.Project, error) {
	created := *p
	created.ID = "p" + strconv.Itoa(len(r.projects)+1)
	r.projects[created.ID] = &created
	return &created, nil
}

func (r *fakeProjectRepo) FindByID(_ context.Context, id string) (*domain.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	clone := *p
	clone.MemberIDs = append([]string{}, p.MemberIDs...)
	return &clone, nil
}

func (r *fakeProjectRepo) ListForUser(_ context.Context, userID string) ([]*domain.Project, error) {
	out := []*domain.Project{}
	for _, p := range r.projects {
		if p.IsOwner(userID) || p.HasMember(userID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProjectRepo) Update(_ context.Context, p *domain.Project) error {
	if _, ok := r.projects[p.ID]; !ok {
		return domain.ErrProjectNotFound
	}
	clone := *p
	r.projects[p.ID] = &clone
	return nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.projects[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.projects, id)
	return nil
}

func (r *fakeProjectRepo) AddMember(_ context.Context, projectID, userID string) error {
	p, ok := r.projects[projectID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	if !p.HasMember(userID) {
		p.MemberIDs = append(p.MemberIDs, userID)
	}
	return nil
}

func (r *fakeProjectRepo) RemoveMember(_ context.Context, projectID, userID string) error {
	p, ok := r.projects[projectID]
	if !ok {
		return domain.ErrProjectNotFound
	}
	for i, id := range p.MemberIDs {
		if id == userID {
			p.MemberIDs = append(p.MemberIDs[:i], p.MemberIDs[i+1:]...)
			return nil
		}
	}
	return domain.ErrMemberNotFound
}

func (r *fakeProjectRepo) RemoveMemberEverywhere(_ context.Context, userID string) error {
	for _, p := range r.projects {
		kept := p.MemberIDs[:0]
		for _, id := range p.MemberIDs {
			if id != userID {
				kept = append(kept, id)
			}
		}
		p.MemberIDs = kept
	}
	return nil
}

func (r *fakeProjectRepo) CountPerOwner(_ context.Context, limit int) ([]ports.OwnerProjectCount, error) {
	counts := map[string]int64{}
	for _, p := range r.projects {
		counts[p.OwnerID]++
	}
	out := []ports.OwnerProjectCount{}
	for owner, n := range counts {
		out = append(out, ports.OwnerProjectCount{OwnerID: owner, Count: n})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeTaskRepo struct {
	tasks     map[string]*domain.Task
	updateErr error
}

func newFakeTaskRepo(tasks ...*domain.Task) *fakeTaskRepo {
	r := &fakeTaskRepo{tasks: map[string]*domain.Task{}}
	for _, t := range tasks {
		r.tasks[t.ID] = t
	}
	return r
}

func (r *fakeTaskRepo) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	created := *t
	created.ID = "t" + strconv.Itoa(len(r.tasks)+1)
	r.tasks[created.ID] = &created
	return &created, nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id string) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	clone := *t
	clone.Attachments = append([]domain.Attachment{}, t.Attachments...)
	return &clone, nil
}

func (r *fakeTaskRepo) List(_ context.Context, f ports.TaskListFilter) ([]*domain.Task, error) {
	inScope := func(projectID string) bool {
		if len(f.ProjectIDs) == 0 {
			return true
		}
		for _, id := range f.ProjectIDs {
			if id == projectID {
				return true
			}
		}
		return false
	}
	out := []*domain.Task{}
	for _, t := range r.tasks {
		if !inScope(t.ProjectID) {
			continue
		}
		if f.Status != "" && string(t.Status) != f.Status {
			continue
		}
		if f.Priority != "" && string(t.Priority) != f.Priority {
			continue
		}
		if f.Assignee == "unassigned" {
			if t.AssigneeID != "" {
				continue
			}
		} else if f.Assignee != "" && t.AssigneeID != f.Assignee {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTaskRepo) ListByProject(_ context.Context, projectID string) ([]*domain.Task, error) {
	out := []*domain.Task{}
	for _, t := range r.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(_ context.Context, t *domain.Task) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.tasks[t.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	clone := *t
	r.tasks[t.ID] = &clone
	return nil
}

func (r *fakeTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) DeleteByProject(_ context.Context, projectID string) error {
	for id, t := range r.tasks {
		if t.ProjectID == projectID {
			delete(r.tasks, id)
		}
	}
	return nil
}

func (r *fakeTaskRepo) AddAttachment(_ context.Context, taskID string, att domain.Attachment) error {
	t, ok := r.tasks[taskID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	t.Attachments = append(t.Attachments, att)
	return nil
}

func (r *fakeTaskRepo) RemoveAttachment(_ context.Context, taskID, attachmentID string) error {
	t, ok := r.tasks[taskID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	for i, a := range t.Attachments {
		if a.ID == attachmentID {
			t.Attachments = append(t.Attachments[:i], t.Attachments[i+1:]...)
			return nil
		}
	}
	return domain.ErrAttachmentNotFound
}

func (r *fakeTaskRepo) FindDueBetween(_ context.Context, from, to time.Time) ([]*domain.Task, error) {
	out := []*domain.Task{}
	for _, t := range r.tasks {
		if t.Status == domain.StatusDone || t.DueDate == nil {
			continue
		}
		if !t.DueDate.Before(from) && !t.DueDate.After(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) CountByStatus(_ context.Context, projectIDs []string) ([]ports.TaskStatusCount, error) {
	counts := map[string]map[domain.TaskStatus]int64{}
	for _, t := range r.tasks {
		if counts[t.ProjectID] == nil {
			counts[t.ProjectID] = map[domain.TaskStatus]int64{}
		}
		counts[t.ProjectID][t.Status]++
	}
	out := []ports.TaskStatusCount{}
	for pid, byStatus := range counts {
		for status, n := range byStatus {
			out = append(out, ports.TaskStatusCount{ProjectID: pid, Status: status, Count: n})
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) CountByPriority(_ context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, t := range r.tasks {
		out[string(t.Priority)]++
	}
	return out, nil
}

func (r *fakeTaskRepo) CountOverdue(_ context.Context, _ []string, now time.Time) (map[string]int64, error) {
	out := map[string]int64{}
	for _, t := range r.tasks {
		if t.DueDate != nil && t.DueDate.Before(now) && t.Status != domain.StatusDone {
			out[t.ProjectID]++
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) CountCreatedPerMonth(_ context.Context, since time.Time) (map[string]int64, error) {
	out := map[string]int64{}
	for _, t := range r.tasks {
		if !t.CreatedAt.Before(since) {
			out[t.CreatedAt.Format("2006-01")]++
		}
	}
	return out, nil
}

type fakeCommentRepo struct {
	comments map[string]*domain.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[string]*domain.Comment{}}
}

func (r *fakeCommentRepo) Create(_ context.Context, c *domain.Comment) (*domain.Comment, error) {
	created := *c
	created.ID = "c" + strconv.Itoa(len(r.comments)+1)
	r.comments[created.ID] = &created
	return &created, nil
}

func (r *fakeCommentRepo) ListByTask(_ context.Context, taskID string) ([]*domain.Comment, error) {
	out := []*domain.Comment{}
	for _, c := range r.comments {
		if c.Kind == domain.CommentOnTask && c.TaskID == taskID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) ListByProject(_ context.Context, projectID string) ([]*domain.Comment, error) {
	out := []*domain.Comment{}
	for _, c := range r.comments {
		if c.Kind == domain.CommentOnProject && c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) DeleteByTask(_ context.Context, taskID string) error {
	for id, c := range r.comments {
		if c.TaskID == taskID {
			delete(r.comments, id)
		}
	}
	return nil
}

func (r *fakeCommentRepo) DeleteByProject(_ context.Context, projectID string, taskIDs []string) error {
	inTasks := map[string]struct{}{}
	for _, id := range taskIDs {
		inTasks[id] = struct{}{}
	}
	for id, c := range r.comments {
		_, taskMatch := inTasks[c.TaskID]
		if c.ProjectID == projectID || taskMatch {
			delete(r.comments, id)
		}
	}
	return nil
}

type fakeNotificationRepo struct {
	notifications []*domain.Notification
	// failFor makes Create fail for the given user id.
	failFor string
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) (*domain.Notification, error) {
	if r.failFor != "" && n.UserID == r.failFor {
		return nil, fmt.Errorf("create notification for %s: store unavailable", n.UserID)
	}
	created := *n
	created.ID = "n" + strconv.Itoa(len(r.notifications)+1)
	r.notifications = append(r.notifications, &created)
	return &created, nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID string, read *bool, limit int) ([]*domain.Notification, error) {
	out := []*domain.Notification{}
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if read != nil && n.Read != *read {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id, userID string) (*domain.Notification, error) {
	for _, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return n, nil
		}
	}
	return nil, domain.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) byType(typ domain.NotificationType) []*domain.Notification {
	out := []*domain.Notification{}
	for _, n := range r.notifications {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

// recordedEvent is one Publish call captured by the recording broadcaster.
type recordedEvent struct {
	Channel string
	Event   string
	Payload any
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recordingBroadcaster) Publish(channel, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{Channel: channel, Event: event, Payload: payload})
}

func (b *recordingBroadcaster) byEvent(event string) []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []recordedEvent{}
	for _, e := range b.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

type fakeFileStore struct {
	saved   map[string][]byte
	removed []string
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{saved: map[string][]byte{}}
}

func (s *fakeFileStore) Save(originalName string, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	name := "stored-" + originalName
	s.saved[name] = data
	return name, nil
}

func (s *fakeFileStore) Open(fileName string) (io.ReadCloser, error) {
	data, ok := s.saved[fileName]
	if !ok {
		return nil, fmt.Errorf("open %s: not found", fileName)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeFileStore) Remove(fileName string) error {
	delete(s.saved, fileName)
	s.removed = append(s.removed, fileName)
	return nil
}
