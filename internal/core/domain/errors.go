package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrProjectNotFound      = errors.New("project not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrAttachmentNotFound   = errors.New("attachment not found")
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrAlreadyMember is returned when inviting a user who is already a
	// member (or the owner) of the project.
	ErrAlreadyMember = errors.New("user is already a member of this project")

	// ErrMemberNotFound is returned when removing a user who is not in the
	// project's member set. Removing twice is an error, not a silent no-op.
	ErrMemberNotFound = errors.New("member not found")

	ErrInvalidInput = errors.New("invalid input")
)
