package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/postboard/postboard-api/internal/core/domain"
	"github.com/postboard/postboard-api/internal/core/ports"
)

// timingDummyPassword is hashed once so that logins for unknown usernames
// still pay for one hash verification.
const timingDummyPassword = "postboard-timing-equalizer"

// AuthService implements login, registration and the admin account listing.
type AuthService struct {
	accounts    ports.AccountRepository
	hasher      ports.PasswordHasher
	tokens      ports.TokenIssuer
	defaultRole domain.Role
	dummyHash   string
	log         zerolog.Logger
	now         func() time.Time
}

// NewAuthService wires the service. defaultRole must already be resolved
// against the role store (see ResolveDefaultRole). A hasher that cannot
// produce the timing dummy hash is a configuration error.
func NewAuthService(
	accounts ports.AccountRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	defaultRole domain.Role,
	log zerolog.Logger,
) (*AuthService, error) {
	dummy, err := hasher.Hash(timingDummyPassword)
	if err != nil {
		return nil, fmt.Errorf("%w: prepare timing dummy hash: %v", domain.ErrConfiguration, err)
	}
	return &AuthService{
		accounts:    accounts,
		hasher:      hasher,
		tokens:      tokens,
		defaultRole: defaultRole,
		dummyHash:   dummy,
		log:         log,
		now:         time.Now,
	}, nil
}

// VerifyLogin checks a username/password pair. Unknown usernames and wrong
// passwords both return domain.ErrInvalidCredentials.
func (s *AuthService) VerifyLogin(ctx context.Context, username, password string) (*domain.Account, error) {
	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify login: %w", err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return account, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	account, err := s.VerifyLogin(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(account)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	s.log.Info().Str("account_id", account.ID).Msg("login succeeded")
	return &ports.LoginResult{Token: token, Account: account}, nil
}

// Register creates an account holding exactly the default role. The lookup
// is a fast path; the repository's unique constraint decides concurrent races.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.Account, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}

	_, err := s.accounts.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateUsername
	case !errors.Is(err, domain.ErrAccountNotFound):
		return nil, fmt.Errorf("register: lookup: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	created, err := s.accounts.Create(ctx, &domain.Account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Roles:        []domain.Role{s.defaultRole},
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("account_id", created.ID).Str("username", created.Username).Msg("account registered")
	return created, nil
}

// ListAccounts returns every account. Only admins may call it.
func (s *AuthService) ListAccounts(ctx context.Context, actorID string) ([]*domain.Account, error) {
	actor, err := resolveActor(ctx, s.accounts, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.accounts.List(ctx)
}

// resolveActor loads the account behind a verified token subject. A subject
// that no longer resolves is treated as unauthenticated.
func resolveActor(ctx context.Context, accounts ports.AccountRepository, actorID string) (*domain.Account, error) {
	if actorID == "" {
		return nil, domain.ErrUnauthenticated
	}
	actor, err := accounts.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("resolve actor: %w", err)
	}
	return actor, nil
}

// ResolveDefaultRole looks up the role assigned to new accounts. A missing
// role is a deployment fault.
func ResolveDefaultRole(ctx context.Context, roles ports.RoleRepository) (domain.Role, error) {
	role, err := roles.FindByName(ctx, domain.DefaultRoleName)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return domain.Role{}, fmt.Errorf("%w: seed role %q is missing", domain.ErrConfiguration, domain.DefaultRoleName)
		}
		return domain.Role{}, fmt.Errorf("resolve default role: %w", err)
	}
	return *role, nil
}
