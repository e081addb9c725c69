package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/postboard/postboard-api/internal/core/domain"
)

// PostRepository implements ports.PostRepository.
type PostRepository struct {
	db *sql.DB
}

const selectPost = `
SELECT p.id, p.content, p.created_at, p.owner_id, a.username
FROM posts p JOIN accounts a ON a.id = p.owner_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*domain.Post, error) {
	var (
		p         domain.Post
		createdAt int64
	)
	if err := row.Scan(&p.ID, &p.Content, &createdAt, &p.OwnerID, &p.OwnerUsername); err != nil {
		return nil, err
	}
	p.CreatedAt = fromMillis(createdAt)
	return &p, nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO posts (content, created_at, owner_id) VALUES (?, ?, ?)",
		post.Content, toMillis(post.CreatedAt), post.OwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	created := *post
	created.ID = id
	created.CreatedAt = fromMillis(toMillis(post.CreatedAt))
	return &created, nil
}

func (r *PostRepository) FindByID(ctx context.Context, id int64) (*domain.Post, error) {
	p, err := scanPost(r.db.QueryRowContext(ctx, selectPost+" WHERE p.id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

// ListPage reads the count and the page inside one transaction so both see
// the same snapshot.
func (r *PostRepository) ListPage(ctx context.Context, offset, limit int) ([]*domain.Post, int64, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int64
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM posts").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	rows, err := tx.QueryContext(ctx, selectPost+" ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0, limit)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return posts, total, nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}
