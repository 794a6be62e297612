package ports

import (
	"context"

	"github.com/crewboard/crewboard-api/internal/core/domain"
)

// ProjectRepository persists projects and their member sets.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	// ListForUser returns projects where the user is owner or member,
	// newest first.
	ListForUser(ctx context.Context, userID string) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, projectID, userID string) error
	// RemoveMember fails with domain.ErrMemberNotFound when the user is not
	// in the member set.
	RemoveMember(ctx context.Context, projectID, userID string) error
	// RemoveMemberEverywhere pulls the user out of every project's member
	// set. Used when an admin account is deleted.
	RemoveMemberEverywhere(ctx context.Context, userID string) error
	// CountPerOwner returns project counts grouped by owner id, largest
	// first, capped at limit.
	CountPerOwner(ctx context.Context, limit int) ([]OwnerProjectCount, error)
}

// OwnerProjectCount is one row of the projects-per-owner aggregation.
type OwnerProjectCount struct {
	OwnerID string `json:"owner_id" bson:"_id"`
	Count   int64  `json:"count" bson:"count"`
}
