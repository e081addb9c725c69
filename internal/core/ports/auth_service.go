package ports

import (
	"context"

	"github.com/postboard/postboard-api/internal/core/domain"
)

// LoginResult is what a successful login hands to the transport layer.
type LoginResult struct {
	Token   *domain.AccessToken
	Account *domain.Account
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Register(ctx context.Context, username, password string) (*domain.Account, error)
	ListAccounts(ctx context.Context, actorID string) ([]*domain.Account, error)
}
