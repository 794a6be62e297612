package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/crewboard/crewboard-api/internal/core/access"
	"github.com/crewboard/crewboard-api/internal/core/domain"
	"github.com/crewboard/crewboard-api/internal/core/ports"
)

type taskFixture struct {
	service  *TaskService
	tasks    *fakeTaskRepo
	comments *fakeCommentRepo
	notifs   *fakeNotificationRepo
	bus      *recordingBroadcaster
	files    *fakeFileStore
}

// newTaskFixture wires a TaskService over one project owned by "owner1" with
// members "member1" and "member2".
func newTaskFixture(tasks ...*domain.Task) *taskFixture {
	users := newFakeUserRepo(
		&domain.User{ID: "owner1", Name: "Olive", Email: "olive@example.com", Role: domain.RoleOwner},
		&domain.User{ID: "member1", Name: "Max", Email: "max@example.com", Role: domain.RoleMember},
		&domain.User{ID: "member2", Name: "Mia", Email: "mia@example.com", Role: domain.RoleMember},
		&domain.User{ID: "admin1", Name: "Ada", Email: "ada@example.com", Role: domain.RoleAdmin},
	)
	projects := newFakeProjectRepo(&domain.Project{
		ID:        "p1",
		Title:     "Launch",
		OwnerID:   "owner1",
		MemberIDs: []string{"member1", "member2"},
	})

	taskRepo := newFakeTaskRepo(tasks...)
	commentRepo := newFakeCommentRepo()
	notifRepo := &fakeNotificationRepo{}
	bus := &recordingBroadcaster{}
	files := newFakeFileStore()
	notifier := NewNotificationService(notifRepo, bus, zerolog.Nop())

	return &taskFixture{
		service:  NewTaskService(taskRepo, projects, commentRepo, users, notifier, bus, files, zerolog.Nop()),
		tasks:    taskRepo,
		comments: commentRepo,
		notifs:   notifRepo,
		bus:      bus,
		files:    files,
	}
}

func actorOwner() ports.Actor  { return ports.Actor{ID: "owner1", Name: "Olive", Role: domain.RoleOwner} }
func actorMember() ports.Actor { return ports.Actor{ID: "member1", Name: "Max", Role: domain.RoleMember} }

func baseTask() *domain.Task {
	return &domain.Task{
		ID:         "t1",
		ProjectID:  "p1",
		Title:      "Ship it",
		AssigneeID: "member1",
		Status:     domain.StatusTodo,
		Priority:   domain.PriorityMedium,
	}
}

func TestTaskService_Create_Defaults(t *testing.T) {
	fx := newTaskFixture()

	created, err := fx.service.Create(context.Background(), actorOwner(), ports.CreateTaskInput{
		ProjectID: "p1",
		Title:     "New task",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != domain.StatusTodo {
		t.Fatalf("expected default status todo, got %s", created.Status)
	}
	if created.Priority != domain.PriorityMedium {
		t.Fatalf("expected default priority medium, got %s", created.Priority)
	}
	if len(fx.notifs.notifications) != 0 {
		t.Fatalf("unassigned create must not notify, got %d", len(fx.notifs.notifications))
	}
}

func TestTaskService_Create_NotifiesAssignee(t *testing.T) {
	fx := newTaskFixture()

	_, err := fx.service.Create(context.Background(), actorOwner(), ports.CreateTaskInput{
		ProjectID:  "p1",
		Title:      "Assigned task",
		AssigneeID: "member1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	assigned := fx.notifs.byType(domain.NotifyTaskAssigned)
	if len(assigned) != 1 {
		t.Fatalf("expected 1 task_assigned notification, got %d", len(assigned))
	}
	if assigned[0].UserID != "member1" {
		t.Fatalf("notification went to %s", assigned[0].UserID)
	}
}

func TestTaskService_Create_SelfAssignDoesNotNotify(t *testing.T) {
	fx := newTaskFixture()

	_, err := fx.service.Create(context.Background(), actorMember(), ports.CreateTaskInput{
		ProjectID:  "p1",
		Title:      "Mine",
		AssigneeID: "member1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(fx.notifs.notifications) != 0 {
		t.Fatalf("self-assignment must not notify, got %d", len(fx.notifs.notifications))
	}
}

func TestTaskService_Update_StatusChangeNotifiesOnce(t *testing.T) {
	fx := newTaskFixture(baseTask())

	status := domain.StatusInProgress
	_, err := fx.service.Update(context.Background(), actorOwner(), "t1", ports.UpdateTaskInput{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	changed := fx.notifs.byType(domain.NotifyStatusChanged)
	if len(changed) != 1 {
		t.Fatalf("expected exactly 1 status_changed notification, got %d", len(changed))
	}
	n := changed[0]
	if n.UserID != "member1" {
		t.Fatalf("notification went to %s", n.UserID)
	}
	if n.Payload["old_status"] != "todo" || n.Payload["new_status"] != "in_progress" {
		t.Fatalf("unexpected payload: %+v", n.Payload)
	}
	if len(fx.notifs.byType(domain.NotifyTaskAssigned)) != 0 {
		t.Fatalf("assignment notification must not fire on a status change")
	}

	updated := fx.bus.byEvent(ports.EventTaskUpdated)
	if len(updated) != 1 || updated[0].Channel != ports.ProjectChannel("p1") {
		t.Fatalf("expected 1 task-updated broadcast on project channel, got %+v", updated)
	}
}

func TestTaskService_Update_StatusChangeUnassignedSkipsNotification(t *testing.T) {
	task := baseTask()
	task.AssigneeID = ""
	fx := newTaskFixture(task)

	status := domain.StatusDone
	_, err := fx.service.Update(context.Background(), actorOwner(), "t1", ports.UpdateTaskInput{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(fx.notifs.notifications) != 0 {
		t.Fatalf("status change on unassigned task must not notify")
	}
	if len(fx.bus.byEvent(ports.EventTaskUpdated)) != 1 {
		t.Fatalf("broadcast must still fire")
	}
}

func TestTaskService_Update_ReassignNotifiesNewAssignee(t *testing.T) {
	fx := newTaskFixture(baseTask())

	assignee := "member2"
	_, err := fx.service.Update(context.Background(), actorOwner(), "t1", ports.UpdateTaskInput{AssigneeID: &assignee})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	assigned := fx.notifs.byType(domain.NotifyTaskAssigned)
	if len(assigned) != 1 {
		t.Fatalf("expected 1 task_assigned notification, got %d", len(assigned))
	}
	if assigned[0].UserID != "member2" {
		t.Fatalf("notification went to %s", assigned[0].UserID)
	}
}

func TestTaskService_Update_SameAssigneeDoesNotNotify(t *testing.T) {
	fx := newTaskFixture(baseTask())

	assignee := "member1"
	_, err := fx.service.Update(context.Background(), actorOwner(), "t1", ports.UpdateTaskInput{AssigneeID: &assignee})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(fx.notifs.byType(domain.NotifyTaskAssigned)) != 0 {
		t.Fatalf("unchanged assignee must not notify")
	}
}

func TestTaskService_Update_BothNotificationsOnOneCall(t *testing.T) {
	fx := newTaskFixture(baseTask())

	status := domain.StatusDone
	assignee := "member2"
	_, err := fx.service.Update(context.Background(), actorOwner(), "t1", ports.UpdateTaskInput{
		Status:     &status,
		AssigneeID: &assignee,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if n := fx.notifs.byType(domain.NotifyStatusChanged); len(n) != 1 {
		t.Fatalf("expected 1 status_changed, got %d", len(n))
	}
	if n := fx.notifs.byType(domain.NotifyTaskAssigned); len(n) != 1 {
		t.Fatalf("expected 1 task_assigned, got %d", len(n))
	}
	if len(fx.bus.byEvent(ports.EventTaskUpdated)) != 1 {
		t.Fatalf("expected exactly 1 broadcast")
	}
}

func TestTaskService_Update_MemberNotAssigneeDenied(t *testing.T) {
	fx := newTaskFixture(baseTask())

	status := domain.StatusDone
	actor := ports.Actor{ID: "member2", Name: "Mia", Role: domain.RoleMember}
	_, err := fx.service.Update(context.Background(), actor, "t1", ports.UpdateTaskInput{Status: &status})

	var denied *access.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected denial, got %v", err)
	}
	if denied.Reason != "You can only update your assigned tasks" {
		t.Fatalf("unexpected reason: %s", denied.Reason)
	}
	if len(fx.notifs.notifications) != 0 || len(fx.bus.events) != 0 {
		t.Fatalf("denied update must have no side effects")
	}
}

func TestTaskService_Update_NoFields(t *testing.T) {
	fx := newTaskFixture(baseTask())

	_, err := fx.service.Update(context.Background(), actorOwner(), "t1", ports.UpdateTaskInput{})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTaskService_Delete_Cascade(t *testing.T) {
	task := baseTask()
	task.Attachments = []domain.Attachment{{ID: "a1", FileName: "stored-doc.pdf"}}
	fx := newTaskFixture(task)
	fx.files.saved["stored-doc.pdf"] = []byte("x")

	_, err := fx.comments.Create(context.Background(), &domain.Comment{
		Kind: domain.CommentOnTask, TaskID: "t1", AuthorID: "member1", Text: "hi",
	})
	if err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	if err := fx.service.Delete(context.Background(), actorOwner(), "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := fx.tasks.FindByID(context.Background(), "t1"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("task should be gone, got %v", err)
	}
	remaining, _ := fx.comments.ListByTask(context.Background(), "t1")
	if len(remaining) != 0 {
		t.Fatalf("task comments should be gone, got %d", len(remaining))
	}
	if len(fx.files.removed) != 1 || fx.files.removed[0] != "stored-doc.pdf" {
		t.Fatalf("attachment file should be removed, got %v", fx.files.removed)
	}
	if len(fx.bus.byEvent(ports.EventTaskDeleted)) != 1 {
		t.Fatalf("expected task-deleted broadcast")
	}
}

func TestTaskService_Delete_MemberDenied(t *testing.T) {
	fx := newTaskFixture(baseTask())

	err := fx.service.Delete(context.Background(), actorMember(), "t1")
	if !errors.Is(err, access.ErrDenied) {
		t.Fatalf("expected denial, got %v", err)
	}
}

func TestTaskService_AddComment_NotifiesAssignee(t *testing.T) {
	fx := newTaskFixture(baseTask())

	view, err := fx.service.AddComment(context.Background(), actorOwner(), "t1", "looks good")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if view.Author == nil || view.Author.ID != "owner1" {
		t.Fatalf("expected resolved author, got %+v", view.Author)
	}

	added := fx.notifs.byType(domain.NotifyCommentAdded)
	if len(added) != 1 || added[0].UserID != "member1" {
		t.Fatalf("expected comment notification for assignee, got %+v", added)
	}
	if len(fx.bus.byEvent(ports.EventCommentAdded)) != 1 {
		t.Fatalf("expected comment-added broadcast")
	}
}

func TestTaskService_AddComment_AssigneeAuthorNotNotified(t *testing.T) {
	fx := newTaskFixture(baseTask())

	if _, err := fx.service.AddComment(context.Background(), actorMember(), "t1", "on it"); err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if len(fx.notifs.notifications) != 0 {
		t.Fatalf("assignee commenting on own task must not self-notify")
	}
}

func TestTaskService_Attachments_UploadAndRemove(t *testing.T) {
	fx := newTaskFixture(baseTask())

	task, err := fx.service.AddAttachment(context.Background(), actorMember(), "t1", ports.AttachmentUpload{
		OriginalName: "spec.pdf",
		MimeType:     "application/pdf",
		Size:         4,
		Content:      strings.NewReader("data"),
	})
	if err != nil {
		t.Fatalf("add attachment: %v", err)
	}
	if len(task.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %d", len(task.Attachments))
	}
	att := task.Attachments[0]
	if att.UploadedBy != "member1" || att.OriginalName != "spec.pdf" {
		t.Fatalf("unexpected attachment: %+v", att)
	}
	if _, ok := fx.files.saved[att.FileName]; !ok {
		t.Fatalf("file bytes not stored under %s", att.FileName)
	}

	// Another member cannot remove it.
	other := ports.Actor{ID: "member2", Name: "Mia", Role: domain.RoleMember}
	if _, err := fx.service.RemoveAttachment(context.Background(), other, "t1", att.ID); !errors.Is(err, access.ErrDenied) {
		t.Fatalf("expected denial for non-uploader, got %v", err)
	}

	// The uploader can.
	task, err = fx.service.RemoveAttachment(context.Background(), actorMember(), "t1", att.ID)
	if err != nil {
		t.Fatalf("remove attachment: %v", err)
	}
	if len(task.Attachments) != 0 {
		t.Fatalf("attachment should be gone")
	}
}

func TestTaskService_List_ScopedToVisibleProjects(t *testing.T) {
	fx := newTaskFixture(baseTask())

	outsider := ports.Actor{ID: "nobody", Name: "N", Role: domain.RoleMember}
	tasks, err := fx.service.List(context.Background(), outsider, ports.ListTasksInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("outsider should see no tasks, got %d", len(tasks))
	}

	tasks, err = fx.service.List(context.Background(), actorMember(), ports.ListTasksInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("member should see 1 task, got %d", len(tasks))
	}
}

func TestTaskService_Update_RollsNothingOnPersistError(t *testing.T) {
	fx := newTaskFixture(baseTask())
	fx.tasks.updateErr = errors.New("write timeout")

	status := domain.StatusDone
	_, err := fx.service.Update(context.Background(), actorOwner(), "t1", ports.UpdateTaskInput{Status: &status})
	if err == nil {
		t.Fatalf("expected persist error")
	}
	if len(fx.notifs.notifications) != 0 || len(fx.bus.events) != 0 {
		t.Fatalf("failed persist must produce no notifications or broadcasts")
	}
}
