package domain

import "time"

// Project groups tasks under a single owner with a set of collaborating members.
//
// The owner is implicitly a member for access purposes but is never stored in
// MemberIDs. MemberIDs preserves insertion order for display; access checks
// treat it as a set.
type Project struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	OwnerID     string    `json:"owner_id" bson:"owner_id"`
	MemberIDs   []string  `json:"member_ids" bson:"member_ids"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// HasMember reports whether userID is in the stored member set.
func (p *Project) HasMember(userID string) bool {
	for _, id := range p.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsOwner reports whether userID owns the project.
func (p *Project) IsOwner(userID string) bool {
	return p.OwnerID == userID
}

// ProjectStats summarizes task progress for a project.
type ProjectStats struct {
	TotalTasks int `json:"total_tasks"`
	DoneTasks  int `json:"done_tasks"`
	Progress   int `json:"progress"` // percentage, 0-100
}
