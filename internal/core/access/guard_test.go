package access

import (
	"errors"
	"testing"

	"github.com/crewboard/crewboard-api/internal/core/domain"
)

var (
	owner    = Subject{UserID: "owner1", Role: domain.RoleOwner}
	admin    = Subject{UserID: "admin1", Role: domain.RoleAdmin}
	member   = Subject{UserID: "member1", Role: domain.RoleMember}
	stranger = Subject{UserID: "other1", Role: domain.RoleMember}
)

func project() *domain.Project {
	return &domain.Project{
		ID:        "p1",
		OwnerID:   "owner1",
		MemberIDs: []string{"member1", "member2"},
	}
}

func TestCanReadProject(t *testing.T) {
	var g Guard
	p := project()

	if err := g.CanReadProject(owner, p); err != nil {
		t.Fatalf("owner should read: %v", err)
	}
	if err := g.CanReadProject(member, p); err != nil {
		t.Fatalf("member should read: %v", err)
	}
	if err := g.CanReadProject(admin, p); err != nil {
		t.Fatalf("admin should read any project: %v", err)
	}
	if err := g.CanReadProject(stranger, p); !errors.Is(err, ErrDenied) {
		t.Fatalf("stranger should be denied, got %v", err)
	}
}

func TestCanInvite_OwnerOnlyInvitesAdmins(t *testing.T) {
	var g Guard
	p := project()
	adminUser := &domain.User{ID: "x", Role: domain.RoleAdmin}
	memberUser := &domain.User{ID: "y", Role: domain.RoleMember}

	if err := g.CanInvite(owner, p, adminUser); err != nil {
		t.Fatalf("owner should invite an admin: %v", err)
	}
	err := g.CanInvite(owner, p, memberUser)
	if !errors.Is(err, ErrDenied) {
		t.Fatalf("owner inviting a member should be denied, got %v", err)
	}
	var denied *DeniedError
	if !errors.As(err, &denied) || denied.Reason != "Owners can only invite admins to projects" {
		t.Fatalf("unexpected denial: %v", err)
	}

	// A system admin may invite anyone.
	if err := g.CanInvite(admin, p, memberUser); err != nil {
		t.Fatalf("admin should invite a member: %v", err)
	}
	if err := g.CanInvite(member, p, memberUser); !errors.Is(err, ErrDenied) {
		t.Fatalf("member should not invite, got %v", err)
	}
}

func TestCanInvite_AdminOwnerBoundByOwnerRule(t *testing.T) {
	var g Guard
	p := project()
	p.OwnerID = "admin1"
	adminUser := &domain.User{ID: "x", Role: domain.RoleAdmin}
	memberUser := &domain.User{ID: "y", Role: domain.RoleMember}

	// An admin who owns the project invites as an owner, not as an admin.
	err := g.CanInvite(admin, p, memberUser)
	if !errors.Is(err, ErrDenied) {
		t.Fatalf("admin-role owner inviting a member should be denied, got %v", err)
	}
	var denied *DeniedError
	if !errors.As(err, &denied) || denied.Reason != "Owners can only invite admins to projects" {
		t.Fatalf("unexpected denial: %v", err)
	}
	if err := g.CanInvite(admin, p, adminUser); err != nil {
		t.Fatalf("admin-role owner should invite an admin: %v", err)
	}
}

func TestCanRemoveMember(t *testing.T) {
	var g Guard
	p := project()
	plainMember := &domain.User{ID: "member2", Role: domain.RoleMember}
	ownerUser := &domain.User{ID: "owner1", Role: domain.RoleOwner}
	adminMember := &domain.User{ID: "member2", Role: domain.RoleAdmin}

	if err := g.CanRemoveMember(owner, p, plainMember); err != nil {
		t.Fatalf("owner should remove a member: %v", err)
	}
	if err := g.CanRemoveMember(admin, p, plainMember); err != nil {
		t.Fatalf("admin should remove a plain member: %v", err)
	}
	if err := g.CanRemoveMember(owner, p, ownerUser); !errors.Is(err, ErrDenied) {
		t.Fatalf("owner must never be removable, got %v", err)
	}
	if err := g.CanRemoveMember(admin, p, adminMember); !errors.Is(err, ErrDenied) {
		t.Fatalf("admin removing an admin should be denied, got %v", err)
	}
	if err := g.CanRemoveMember(member, p, plainMember); !errors.Is(err, ErrDenied) {
		t.Fatalf("member should not remove anyone, got %v", err)
	}
}

func TestCanRemoveMember_AdminOwnerCannotRemoveAdmins(t *testing.T) {
	var g Guard
	p := project()
	p.OwnerID = "admin1"
	plainMember := &domain.User{ID: "member1", Role: domain.RoleMember}
	adminMember := &domain.User{ID: "member2", Role: domain.RoleAdmin}

	if err := g.CanRemoveMember(admin, p, plainMember); err != nil {
		t.Fatalf("admin-role owner should remove a plain member: %v", err)
	}
	// Owning the project does not lift the admin-vs-admin restriction.
	if err := g.CanRemoveMember(admin, p, adminMember); !errors.Is(err, ErrDenied) {
		t.Fatalf("admin-role owner removing an admin should be denied, got %v", err)
	}
}

func TestCanDeleteProject_OwnerOnly(t *testing.T) {
	var g Guard
	p := project()

	if err := g.CanDeleteProject(owner, p); err != nil {
		t.Fatalf("owner should delete: %v", err)
	}
	if err := g.CanDeleteProject(admin, p); !errors.Is(err, ErrDenied) {
		t.Fatalf("admin should not delete someone else's project, got %v", err)
	}
	if err := g.CanDeleteProject(member, p); !errors.Is(err, ErrDenied) {
		t.Fatalf("member should not delete, got %v", err)
	}
}

func TestCanUpdateTask(t *testing.T) {
	var g Guard
	p := project()
	task := &domain.Task{ID: "t1", ProjectID: "p1", AssigneeID: "member1"}

	if err := g.CanUpdateTask(owner, p, task); err != nil {
		t.Fatalf("owner should update: %v", err)
	}
	if err := g.CanUpdateTask(admin, p, task); err != nil {
		t.Fatalf("admin should update: %v", err)
	}
	if err := g.CanUpdateTask(member, p, task); err != nil {
		t.Fatalf("assignee should update: %v", err)
	}

	// A project member who is not the assignee is rejected with the
	// assignment-specific reason.
	other := Subject{UserID: "member2", Role: domain.RoleMember}
	err := g.CanUpdateTask(other, p, task)
	var denied *DeniedError
	if !errors.As(err, &denied) || denied.Reason != "You can only update your assigned tasks" {
		t.Fatalf("expected assignment denial, got %v", err)
	}

	if err := g.CanUpdateTask(stranger, p, &domain.Task{ID: "t2", ProjectID: "p1"}); !errors.Is(err, ErrDenied) {
		t.Fatalf("stranger should be denied, got %v", err)
	}
}

func TestCanDeleteTask(t *testing.T) {
	var g Guard
	p := project()

	if err := g.CanDeleteTask(owner, p); err != nil {
		t.Fatalf("owner should delete: %v", err)
	}
	if err := g.CanDeleteTask(admin, p); err != nil {
		t.Fatalf("admin should delete: %v", err)
	}
	if err := g.CanDeleteTask(member, p); !errors.Is(err, ErrDenied) {
		t.Fatalf("member should not delete tasks, got %v", err)
	}
}

func TestCanDeleteAttachment(t *testing.T) {
	var g Guard
	p := project()
	att := &domain.Attachment{ID: "a1", UploadedBy: "member1"}

	if err := g.CanDeleteAttachment(member, p, att); err != nil {
		t.Fatalf("uploader should delete own attachment: %v", err)
	}
	if err := g.CanDeleteAttachment(owner, p, att); err != nil {
		t.Fatalf("owner should delete any attachment: %v", err)
	}

	other := Subject{UserID: "member2", Role: domain.RoleMember}
	err := g.CanDeleteAttachment(other, p, att)
	var denied *DeniedError
	if !errors.As(err, &denied) || denied.Reason != "You can only delete your own attachments" {
		t.Fatalf("expected uploader denial, got %v", err)
	}
}

func TestCanDeleteAdminAccount(t *testing.T) {
	var g Guard
	adminUser := &domain.User{ID: "admin1", Role: domain.RoleAdmin}
	memberUser := &domain.User{ID: "member1", Role: domain.RoleMember}

	if err := g.CanDeleteAdminAccount(owner, adminUser); err != nil {
		t.Fatalf("owner should delete an admin: %v", err)
	}
	if err := g.CanDeleteAdminAccount(admin, adminUser); !errors.Is(err, ErrDenied) {
		t.Fatalf("admin should not delete admins, got %v", err)
	}
	err := g.CanDeleteAdminAccount(owner, memberUser)
	var denied *DeniedError
	if !errors.As(err, &denied) || denied.Reason != "User is not an admin" {
		t.Fatalf("expected non-admin denial, got %v", err)
	}
}

func TestCanListUsers(t *testing.T) {
	var g Guard

	if err := g.CanListUsers(owner); err != nil {
		t.Fatalf("owner should list users: %v", err)
	}
	if err := g.CanListUsers(admin); err != nil {
		t.Fatalf("admin should list users: %v", err)
	}
	if err := g.CanListUsers(member); !errors.Is(err, ErrDenied) {
		t.Fatalf("member should be denied, got %v", err)
	}
}

func TestCanViewUserStats_SelfOnlyForMembers(t *testing.T) {
	var g Guard

	if err := g.CanViewUserStats(member, "member1"); err != nil {
		t.Fatalf("member should view own stats: %v", err)
	}
	if err := g.CanViewUserStats(member, "member2"); !errors.Is(err, ErrDenied) {
		t.Fatalf("member viewing another's stats should be denied, got %v", err)
	}
	if err := g.CanViewUserStats(admin, "member2"); err != nil {
		t.Fatalf("admin should view anyone's stats: %v", err)
	}
}
