package domain

import "time"

// RoleName identifies an authorization level.
type RoleName string

const (
	RoleAdmin RoleName = "admin"
	RoleBasic RoleName = "basic"
)

// DefaultRoleName is the role every self-registered account receives.
const DefaultRoleName = RoleBasic

// Role is seed reference data resolved by name.
type Role struct {
	ID   int64    `json:"id"`
	Name RoleName `json:"name"`
}

// Account models a registered identity. Roles is a snapshot loaded with the
// account, not a live relation.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

// HasRole reports whether the account holds the named role.
func (a *Account) HasRole(name RoleName) bool {
	if a == nil {
		return false
	}
	for _, r := range a.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// IsAdmin is shorthand for HasRole(RoleAdmin).
func (a *Account) IsAdmin() bool {
	return a.HasRole(RoleAdmin)
}

// RoleNames returns the account's role names in load order.
func (a *Account) RoleNames() []string {
	if a == nil {
		return nil
	}
	names := make([]string, 0, len(a.Roles))
	for _, r := range a.Roles {
		names = append(names, string(r.Name))
	}
	return names
}
