package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/postboard/postboard-api/internal/core/domain"
)

// AccountRepository implements ports.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.findOne(ctx, "username", username)
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.findOne(ctx, "id", id)
}

func (r *AccountRepository) findOne(ctx context.Context, column, value string) (*domain.Account, error) {
	var a domain.Account
	err := r.pool.QueryRow(ctx,
		"SELECT id, username, password_hash, created_at FROM accounts WHERE "+column+" = $1",
		value,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	roles, err := r.loadRoles(ctx, []string{a.ID})
	if err != nil {
		return nil, err
	}
	a.Roles = roles[a.ID]
	return &a, nil
}

// Create inserts the account and its role links in one transaction.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			"INSERT INTO accounts (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)",
			account.ID, account.Username, account.PasswordHash, account.CreatedAt.UTC(),
		); err != nil {
			return err
		}
		for _, role := range account.Roles {
			if _, err := tx.Exec(ctx,
				"INSERT INTO account_roles (account_id, role_id) VALUES ($1, $2)",
				account.ID, role.ID,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateUsername
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return r.FindByID(ctx, account.ID)
}

func (r *AccountRepository) List(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, "SELECT id, username, password_hash, created_at FROM accounts ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	accounts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Account, error) {
		var a domain.Account
		err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
		return &a, err
	})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.ID)
	}
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
	rows, err := r.pool.Query(ctx, `
SELECT ar.account_id, r.id, r.name
FROM account_roles ar
JOIN roles r ON r.id = ar.role_id
WHERE ar.account_id = ANY($1)
ORDER BY r.id`, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			accountID string
			role      domain.Role
		)
		if err := rows.Scan(&accountID, &role.ID, &role.Name); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		out[accountID] = append(out[accountID], role)
	}
	return out, rows.Err()
}

// RoleRepository implements ports.RoleRepository over the seeded roles table.
type RoleRepository struct {
	pool *pgxpool.Pool
}

func (r *RoleRepository) FindByName(ctx context.Context, name domain.RoleName) (*domain.Role, error) {
	var role domain.Role
	err := r.pool.QueryRow(ctx, "SELECT id, name FROM roles WHERE name = $1", string(name)).Scan(&role.ID, &role.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &role, nil
}
