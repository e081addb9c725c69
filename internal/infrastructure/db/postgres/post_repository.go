package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/postboard/postboard-api/internal/core/domain"
)

// PostRepository implements ports.PostRepository.
type PostRepository struct {
	pool *pgxpool.Pool
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	created := *post
	err := r.pool.QueryRow(ctx,
		"INSERT INTO posts (content, created_at, owner_id) VALUES ($1, $2, $3) RETURNING id, created_at",
		post.Content, post.CreatedAt.UTC(), post.OwnerID,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	created.CreatedAt = created.CreatedAt.UTC()
	return &created, nil
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	var p domain.Post
	err := r.pool.QueryRow(ctx, `
SELECT p.id, p.content, p.created_at, p.owner_id, a.username
FROM posts p JOIN accounts a ON a.id = p.owner_id
WHERE p.id = $1`, id).Scan(&p.ID, &p.Content, &p.CreatedAt, &p.OwnerID, &p.OwnerUsername)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

// ListPage reads the count and the page in one repeatable-read snapshot so
// the totals agree with the rows.
func (r *PostRepository) ListPage(ctx context.Context, offset, limit int) ([]*domain.Post, int64, error) {
	var (
		posts []*domain.Post
		total int64
	)
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, "SELECT count(*) FROM posts").Scan(&total); err != nil {
			return err
		}
		rows, err := tx.Query(ctx, `
SELECT p.id, p.content, p.created_at, p.owner_id, a.username
FROM posts p JOIN accounts a ON a.id = p.owner_id
ORDER BY p.created_at DESC, p.id DESC
LIMIT $1 OFFSET $2`, limit, offset)
		if err != nil {
			return err
		}
		posts, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Post, error) {
			var p domain.Post
			if err := row.Scan(&p.ID, &p.Content, &p.CreatedAt, &p.OwnerID, &p.OwnerUsername); err != nil {
				return nil, err
			}
			p.CreatedAt = p.CreatedAt.UTC()
			return &p, nil
		})
		return err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}
