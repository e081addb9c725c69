package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/postboard/postboard-api/internal/core/domain"
)

// AccountRepository implements ports.AccountRepository.
type AccountRepository struct {
	db *sql.DB
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, "username", username)
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, "id", id)
}

func (r *AccountRepository) findOne(ctx context.Context, column, value string) (*domain.Account, error) {
	var (
		a         domain.Account
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, created_at FROM accounts WHERE "+column+" = ?", value,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	a.CreatedAt = fromMillis(createdAt)

	roles, err := r.loadRoles(ctx, []string{a.ID})
	if err != nil {
		return nil, err
	}
	a.Roles = roles[a.ID]
	return &a, nil
}

// Create inserts the account and its role links in one transaction.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO accounts (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)",
		account.ID, account.Username, account.PasswordHash, toMillis(account.CreatedAt),
	); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	for _, role := range account.Roles {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO account_roles (account_id, role_id) VALUES (?, ?)", account.ID, role.ID,
		); err != nil {
			return nil, fmt.Errorf("insert account role: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit account: %w", err)
	}
	return r.FindByID(ctx, account.ID)
}

func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, username, password_hash, created_at FROM accounts ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	var (
		accounts []*domain.Account
		ids      []string
	)
	for rows.Next() {
		var (
			a         domain.Account
			createdAt int64
		)
		if err := rows.Scan(&a.ID, &a.Username, &a.PasswordHash, &createdAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.CreatedAt = fromMillis(createdAt)
		accounts = append(accounts, &a)
		ids = append(ids, a.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	_ = rows.Close()

	roles, err := r.loadRoles(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		a.Roles = roles[a.ID]
	}
	return accounts, nil
}

func (r *AccountRepository) loadRoles(ctx context.Context, accountIDs []string) (map[string][]domain.Role, error) {
	out := make(map[string][]domain.Role, len(accountIDs))
	if len(accountIDs) == 0 {
		return out, nil
	}
	args := make([]any, len(accountIDs))
	for i, id := range accountIDs {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(accountIDs)), ",")

	rows, err := r.db.QueryContext(ctx, `
SELECT ar.account_id, r.id, r.name
FROM account_roles ar
JOIN roles r ON r.id = ar.role_id
WHERE ar.account_id IN (`+placeholders+`)
ORDER BY r.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			accountID string
			role      domain.Role
			name      string
		)
		if err := rows.Scan(&accountID, &role.ID, &name); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		role.Name = domain.RoleName(name)
		out[accountID] = append(out[accountID], role)
	}
	return out, rows.Err()
}

// RoleRepository implements ports.RoleRepository.
type RoleRepository struct {
	db *sql.DB
}

func (r *RoleRepository) FindByName(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	var (
		role   domain.Role
		stored string
	)
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM roles WHERE name = ?", string(name)).Scan(&role.ID, &stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	role.Name = domain.RoleName(stored)
	return &role, nil
}
