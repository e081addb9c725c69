package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/postboard/postboard-api/internal/core/domain"
	"github.com/postboard/postboard-api/internal/core/ports"
)

// AdminCredentials is the deployment-supplied identity of the privileged account.
type AdminCredentials struct {
	Username string
	Password string
}

// Bootstrapper provisions the privileged account at process start.
type Bootstrapper struct {
	roles    ports.RoleRepository
	accounts ports.AccountRepository
	hasher   ports.PasswordHasher
	lock     ports.Locker
	admin    AdminCredentials
	log      zerolog.Logger
}

// NewBootstrapper builds a Bootstrapper. lock may be nil. A single admin is
// guaranteed by the store's unique username constraint alone; the lock only
// keeps racing replicas from each hashing the admin password.
func NewBootstrapper(
	roles ports.RoleRepository,
	accounts ports.AccountRepository,
	hasher ports.PasswordHasher,
	lock ports.Locker,
	admin AdminCredentials,
	log zerolog.Logger,
) *Bootstrapper {
	if admin.Username == "" {
		admin.Username = string(domain.RoleAdmin)
	}
	return &Bootstrapper{
		roles:    roles,
		accounts: accounts,
		hasher:   hasher,
		lock:     lock,
		admin:    admin,
		log:      log,
	}
}

// EnsureAdmin creates the admin account if it is absent. An existing account
// is left untouched, so running it on every start is safe.
func (b *Bootstrapper) EnsureAdmin(ctx context.Context) error {
	role, err := b.roles.FindByName(ctx, domain.RoleAdmin)
	if err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return fmt.Errorf("%w: seed role %q is missing", domain.ErrConfiguration, domain.RoleAdmin)
		}
		return fmt.Errorf("ensure admin: resolve role: %w", err)
	}

	if b.lock != nil {
		release, err := b.lock.Acquire(ctx)
		if err != nil {
			return fmt.Errorf("ensure admin: acquire lock: %w", err)
		}
		defer release()
	}

	_, err = b.accounts.FindByUsername(ctx, b.admin.Username)
	switch {
	case err == nil:
		b.log.Info().Str("username", b.admin.Username).Msg("admin account already exists")
		return nil
	case !errors.Is(err, domain.ErrAccountNotFound):
		return fmt.Errorf("ensure admin: lookup: %w", err)
	}

	if b.admin.Password == "" {
		return fmt.Errorf("%w: admin account %q is absent and no initial password is configured", domain.ErrConfiguration, b.admin.Username)
	}

	hash, err := b.hasher.Hash(b.admin.Password)
	if err != nil {
		return fmt.Errorf("ensure admin: hash password: %w", err)
	}

	created, err := b.accounts.Create(ctx, &domain.Account{
		ID:           uuid.NewString(),
		Username:     b.admin.Username,
		PasswordHash: hash,
		Roles:        []domain.Role{*role},
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			b.log.Info().Str("username", b.admin.Username).Msg("admin account created concurrently")
			return nil
		}
		return fmt.Errorf("ensure admin: create: %w", err)
	}

	b.log.Warn().
		Str("account_id", created.ID).
		Str("username", created.Username).
		Msg("admin account created with the configured initial password; rotate it")
	return nil
}
