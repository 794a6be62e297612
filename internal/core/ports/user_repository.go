package ports

import (
	"context"

	"github.com/crewboard/crewboard-api/internal/core/domain"
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
	Delete(ctx context.Context, id string) error
	// CountByRole returns user counts grouped by role.
	CountByRole(ctx context.Context) (map[string]int64, error)
}
