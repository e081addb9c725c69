package ports

import (
	"context"

	"github.com/postboard/postboard-api/internal/core/domain"
)

// AccountRepository defines account persistence. Lookups return
// domain.ErrAccountNotFound when nothing matches.
type AccountRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	// Create stores the account together with its roles as one unit. A
	// username collision returns domain.ErrDuplicateUsername and stores nothing.
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	List(ctx context.Context) ([]*domain.Account, error)
}

// RoleRepository reads seed roles. Unknown names return domain.ErrRoleNotFound.
type RoleRepository interface {
	FindByName(ctx context.Context, name domain.RoleName) (*domain.Role, error)
}
