package domain

import "time"

// TaskStatus is the workflow state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusDone       TaskStatus = "done"
)

// Valid reports whether the status is one of the known states.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// TaskPriority orders tasks by urgency.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Valid reports whether the priority is one of the known levels.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Attachment records an uploaded file on a task. The bytes live on disk
// outside the database; FileName is the stored name, OriginalName the
// client-supplied one.
type Attachment struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	FileName     string    `json:"filename" bson:"filename"`
	OriginalName string    `json:"original_name" bson:"original_name"`
	MimeType     string    `json:"mime_type" bson:"mime_type"`
	Size         int64     `json:"size" bson:"size"`
	UploadedBy   string    `json:"uploaded_by" bson:"uploaded_by"`
	UploadedAt   time.Time `json:"uploaded_at" bson:"uploaded_at"`
}

// Task is a unit of work inside a project. ProjectID is immutable after
// creation; AssigneeID is empty when unassigned; DueDate is nil when unset.
type Task struct {
	ID          string       `json:"id" bson:"_id,omitempty"`
	ProjectID   string       `json:"project_id" bson:"project_id"`
	Title       string       `json:"title" bson:"title"`
	Desc        string       `json:"desc" bson:"desc"`
	AssigneeID  string       `json:"assignee_id,omitempty" bson:"assignee_id,omitempty"`
	Status      TaskStatus   `json:"status" bson:"status"`
	Priority    TaskPriority `json:"priority" bson:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty" bson:"due_date,omitempty"`
	Attachments []Attachment `json:"attachments" bson:"attachments"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" bson:"updated_at"`
}

// AttachmentByID returns the attachment with the given id, or nil.
func (t *Task) AttachmentByID(id string) *Attachment {
	for i := range t.Attachments {
		if t.Attachments[i].ID == id {
			return &t.Attachments[i]
		}
	}
	return nil
}
