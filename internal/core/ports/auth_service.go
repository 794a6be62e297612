package ports

import (
	"context"

	"github.com/crewboard/crewboard-api/internal/core/domain"
)

// Actor is the authenticated requester, extracted from JWT claims.
type Actor struct {
	ID   string
	Name string
	Role domain.Role
}

// AuthService implements registration and login.
type AuthService interface {
	Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error)
	// Login returns a signed JWT and the authenticated user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
