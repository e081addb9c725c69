package service

import (
	"context"
	"errors"
	"testing"

	"github.com/postboard/postboard-api/internal/core/domain"
	"github.com/postboard/postboard-api/internal/core/ports"
)

func newBootstrapper(roles *stubRoleRepo, accounts *stubAccountRepo, lock *stubLocker, password string) *Bootstrapper {
	var locker ports.Locker
	if lock != nil {
		locker = lock
	}
	return NewBootstrapper(roles, accounts, &plainHasher{}, locker, AdminCredentials{Password: password}, discardLogger)
}

func TestBootstrapper_EnsureAdmin_CreatesOnce(t *testing.T) {
	accounts := newStubAccountRepo()
	b := newBootstrapper(newStubRoleRepo(), accounts, nil, "initial-pw")

	for i := 0; i < 2; i++ {
		if err := b.EnsureAdmin(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	if n := accounts.countUsername("admin"); n != 1 {
		t.Fatalf("expected exactly one admin, got %d", n)
	}
	admin, _ := accounts.FindByUsername(context.Background(), "admin")
	if len(admin.Roles) != 1 || admin.Roles[0].Name != domain.RoleAdmin {
		t.Fatalf("admin roles = %v", admin.Roles)
	}
	if admin.PasswordHash != "hashed:initial-pw" {
		t.Fatalf("password was not hashed with the configured value")
	}
}

func TestBootstrapper_EnsureAdmin_ExistingAdminUntouched(t *testing.T) {
	accounts := newStubAccountRepo()
	_, _ = accounts.Create(context.Background(), &domain.Account{
		ID:           "existing",
		Username:     "admin",
		PasswordHash: "hashed:rotated",
		Roles:        []domain.Role{{ID: 1, Name: domain.RoleAdmin}},
	})
	b := newBootstrapper(newStubRoleRepo(), accounts, nil, "")

	if err := b.EnsureAdmin(context.Background()); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	admin, _ := accounts.FindByUsername(context.Background(), "admin")
	if admin.ID != "existing" || admin.PasswordHash != "hashed:rotated" {
		t.Fatalf("existing admin modified: %+v", admin)
	}
	if accounts.creates != 1 {
		t.Fatalf("expected no further creates, got %d", accounts.creates)
	}
}

func TestBootstrapper_EnsureAdmin_MissingRoleIsFatal(t *testing.T) {
	roles := newStubRoleRepo()
	delete(roles.roles, domain.RoleAdmin)
	b := newBootstrapper(roles, newStubAccountRepo(), nil, "pw")

	if err := b.EnsureAdmin(context.Background()); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestBootstrapper_EnsureAdmin_MissingPasswordIsFatal(t *testing.T) {
	accounts := newStubAccountRepo()
	b := newBootstrapper(newStubRoleRepo(), accounts, nil, "")

	if err := b.EnsureAdmin(context.Background()); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if accounts.creates != 0 {
		t.Fatal("nothing should be created")
	}
}

func TestBootstrapper_EnsureAdmin_ConcurrentCreateIsNotAnError(t *testing.T) {
	accounts := newStubAccountRepo()
	accounts.createErr = domain.ErrDuplicateUsername
	b := newBootstrapper(newStubRoleRepo(), accounts, nil, "pw")

	if err := b.EnsureAdmin(context.Background()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestBootstrapper_EnsureAdmin_HoldsLock(t *testing.T) {
	lock := &stubLocker{}
	b := newBootstrapper(newStubRoleRepo(), newStubAccountRepo(), lock, "pw")

	if err := b.EnsureAdmin(context.Background()); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if lock.acquired != 1 || lock.released != 1 {
		t.Fatalf("lock acquired=%d released=%d", lock.acquired, lock.released)
	}
}

func TestBootstrapper_EnsureAdmin_LockFailure(t *testing.T) {
	lock := &stubLocker{err: errors.New("redis unavailable")}
	accounts := newStubAccountRepo()
	b := newBootstrapper(newStubRoleRepo(), accounts, lock, "pw")

	if err := b.EnsureAdmin(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if accounts.creates != 0 {
		t.Fatal("nothing should be created without the lock")
	}
}

func TestBootstrapper_CustomUsername(t *testing.T) {
	accounts := newStubAccountRepo()
	b := NewBootstrapper(newStubRoleRepo(), accounts, &plainHasher{}, nil, AdminCredentials{Username: "root", Password: "pw"}, discardLogger)

	if err := b.EnsureAdmin(context.Background()); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if accounts.countUsername("root") != 1 {
		t.Fatal("expected root account")
	}
}
