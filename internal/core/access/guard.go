// Package access centralizes every permission decision in the system.
//
// Instead of repeating flat role comparisons at each call site, roles map to
// capability sets once, and each guard method combines those capabilities with
// the subject's relationship to the resource (owner, member, assignee,
// uploader). Every denial carries a human-readable reason and matches
// ErrDenied via errors.Is.
package access

import (
	"errors"

	"github.com/crewboard/crewboard-api/internal/core/domain"
)

// Action names a guarded operation. Used for metrics and denial reasons.
type Action string

const (
	ProjectRead         Action = "project:read"
	ProjectUpdate       Action = "project:update"
	ProjectComment      Action = "project:comment"
	ProjectInvite       Action = "project:invite"
	ProjectRemoveMember Action = "project:remove_member"
	ProjectDelete       Action = "project:delete"
	TaskCreate          Action = "task:create"
	TaskUpdate          Action = "task:update"
	TaskDelete          Action = "task:delete"
	AttachmentDelete    Action = "attachment:delete"
	AdminDelete         Action = "admin:delete"
	UserDirectory       Action = "user:directory"
	UserStats           Action = "user:stats"
)

// Subject is the acting user as seen by the guard.
type Subject struct {
	UserID string
	Role   domain.Role
}

// ErrDenied is the sentinel all authorization failures match.
var ErrDenied = errors.New("access denied")

// DeniedError is a terminal authorization failure with a reason string.
type DeniedError struct {
	Action Action
	Reason string
}

func (e *DeniedError) Error() string { return e.Reason }

// Is lets errors.Is(err, ErrDenied) match any DeniedError.
func (e *DeniedError) Is(target error) bool { return target == ErrDenied }

func deny(action Action, reason string) error {
	return &DeniedError{Action: action, Reason: reason}
}

// capability is a system-wide permission granted by a role, independent of
// any particular project.
type capability string

const (
	// capAnyProject allows acting on projects the subject does not belong to.
	capAnyProject capability = "projects:any"
	// capManageAdmins allows deleting admin accounts system-wide.
	capManageAdmins capability = "admins:manage"
	// capDirectory allows listing all users and reading anyone's stats.
	capDirectory capability = "users:directory"
)

var roleCapabilities = map[domain.Role][]capability{
	domain.RoleAdmin: {capAnyProject, capDirectory},
	domain.RoleOwner: {capManageAdmins, capDirectory},
}

func (s Subject) has(c capability) bool {
	for _, granted := range roleCapabilities[s.Role] {
		if granted == c {
			return true
		}
	}
	return false
}

// Guard evaluates (subject, action, resource) triples. Stateless; the zero
// value is ready to use.
type Guard struct{}

// belongsTo reports whether the subject is the project owner or a member.
func (Guard) belongsTo(sub Subject, p *domain.Project) bool {
	return p.IsOwner(sub.UserID) || p.HasMember(sub.UserID)
}

// CanReadProject covers project read. Owner, member, or system admin.
func (g Guard) CanReadProject(sub Subject, p *domain.Project) error {
	if g.belongsTo(sub, p) || sub.has(capAnyProject) {
		return nil
	}
	return deny(ProjectRead, "Access denied")
}

// CanUpdateProject covers project field updates. Same audience as read.
func (g Guard) CanUpdateProject(sub Subject, p *domain.Project) error {
	if g.belongsTo(sub, p) || sub.has(capAnyProject) {
		return nil
	}
	return deny(ProjectUpdate, "Access denied")
}

// CanCommentOnProject covers posting a project comment.
func (g Guard) CanCommentOnProject(sub Subject, p *domain.Project) error {
	if g.belongsTo(sub, p) || sub.has(capAnyProject) {
		return nil
	}
	return deny(ProjectComment, "You are not allowed to comment on this project")
}

// CanInvite covers adding a member. Only the owner or a system admin may
// invite, and the project owner may only invite users who hold the admin
// role. Ownership binds before capability widens: an admin-role subject who
// owns the project is still held to the owner rule.
func (g Guard) CanInvite(sub Subject, p *domain.Project, target *domain.User) error {
	isOwner := p.IsOwner(sub.UserID)
	if !isOwner && !sub.has(capAnyProject) {
		return deny(ProjectInvite, "Only owner or admin can invite members")
	}
	if isOwner && target.Role != domain.RoleAdmin {
		return deny(ProjectInvite, "Owners can only invite admins to projects")
	}
	return nil
}

// CanRemoveMember covers removing a member. Only the owner or a system admin;
// the owner can never be removed, and an admin-role subject cannot remove
// another admin or an owner, not even from a project they own themselves.
func (g Guard) CanRemoveMember(sub Subject, p *domain.Project, member *domain.User) error {
	isOwner := p.IsOwner(sub.UserID)
	if !isOwner && !sub.has(capAnyProject) {
		return deny(ProjectRemoveMember, "Only owner or admin can remove members")
	}
	if p.IsOwner(member.ID) {
		return deny(ProjectRemoveMember, "Cannot remove project owner")
	}
	if sub.Role == domain.RoleAdmin &&
		(member.Role == domain.RoleAdmin || member.Role == domain.RoleOwner) {
		return deny(ProjectRemoveMember, "Admins cannot remove other admins or the owner")
	}
	return nil
}

// CanDeleteProject covers project deletion. Owner only.
func (g Guard) CanDeleteProject(sub Subject, p *domain.Project) error {
	if p.IsOwner(sub.UserID) {
		return nil
	}
	return deny(ProjectDelete, "Only owner can delete project")
}

// CanCreateTask covers creating a task in a project.
func (g Guard) CanCreateTask(sub Subject, p *domain.Project) error {
	if g.belongsTo(sub, p) || sub.has(capAnyProject) {
		return nil
	}
	return deny(TaskCreate, "Access denied")
}

// CanUpdateTask covers mutating a task. Owner, system admin, or the task's
// current assignee. A plain member who is neither the owner nor the assignee
// is rejected even when they belong to the project.
func (g Guard) CanUpdateTask(sub Subject, p *domain.Project, t *domain.Task) error {
	isOwner := p.IsOwner(sub.UserID)
	isAssignee := t.AssigneeID != "" && t.AssigneeID == sub.UserID

	if !isOwner && !sub.has(capAnyProject) && !isAssignee {
		if sub.Role == domain.RoleMember && g.belongsTo(sub, p) {
			return deny(TaskUpdate, "You can only update your assigned tasks")
		}
		return deny(TaskUpdate, "Access denied")
	}
	return nil
}

// CanDeleteTask covers deleting a task. Owner or system admin only.
func (g Guard) CanDeleteTask(sub Subject, p *domain.Project) error {
	if p.IsOwner(sub.UserID) || sub.has(capAnyProject) {
		return nil
	}
	return deny(TaskDelete, "Only owner or admin can delete tasks")
}

// CanDeleteAttachment covers removing an uploaded file. The subject must have
// project access, and must be the uploader, the project owner, or a system
// admin.
func (g Guard) CanDeleteAttachment(sub Subject, p *domain.Project, att *domain.Attachment) error {
	if !g.belongsTo(sub, p) && !sub.has(capAnyProject) {
		return deny(AttachmentDelete, "Access denied")
	}
	if att.UploadedBy == sub.UserID || p.IsOwner(sub.UserID) || sub.has(capAnyProject) {
		return nil
	}
	return deny(AttachmentDelete, "You can only delete your own attachments")
}

// CanListUsers covers the all-users directory.
func (g Guard) CanListUsers(sub Subject) error {
	if sub.has(capDirectory) {
		return nil
	}
	return deny(UserDirectory, "Access denied. Admin or Owner only.")
}

// CanViewUserStats covers per-user statistics. Elevated roles may ask about
// anyone; everyone else only about themselves.
func (g Guard) CanViewUserStats(sub Subject, targetID string) error {
	if sub.has(capDirectory) || sub.UserID == targetID {
		return nil
	}
	return deny(UserStats, "Access denied")
}

// CanDeleteAdminAccount covers system-wide deletion of an admin user.
// Only a system owner may do it, and only against admin accounts.
func (g Guard) CanDeleteAdminAccount(sub Subject, target *domain.User) error {
	if !sub.has(capManageAdmins) {
		return deny(AdminDelete, "Only a system owner can delete an admin account")
	}
	if target.Role != domain.RoleAdmin {
		return deny(AdminDelete, "User is not an admin")
	}
	return nil
}
