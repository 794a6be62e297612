package domain

import "time"

// CommentKind distinguishes task comments from project comments. Both share
// one collection but are logically distinct entities.
type CommentKind string

const (
	CommentOnTask    CommentKind = "task"
	CommentOnProject CommentKind = "project"
)

// Comment is authored by one user against either a task or a project.
// Exactly one of TaskID / ProjectID is set, according to Kind.
type Comment struct {
	ID        string      `json:"id" bson:"_id,omitempty"`
	Kind      CommentKind `json:"kind" bson:"kind"`
	TaskID    string      `json:"task_id,omitempty" bson:"task_id,omitempty"`
	ProjectID string      `json:"project_id,omitempty" bson:"project_id,omitempty"`
	AuthorID  string      `json:"author_id" bson:"author_id"`
	Text      string      `json:"text" bson:"text"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}
