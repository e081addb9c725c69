package ports

import (
	"context"

	"github.com/postboard/postboard-api/internal/core/domain"
)

// PostRepository defines post persistence.
type PostRepository interface {
	// Create assigns ID and stores the post.
	Create(ctx context.Context, post *domain.Post) (*domain.Post, error)
	// FindByID returns domain.ErrPostNotFound when the post does not exist.
	FindByID(ctx context.Context, id int64) (*domain.Post, error)
	// ListPage returns posts ordered by created_at desc, id desc, together
	// with the total number of posts.
	ListPage(ctx context.Context, offset, limit int) ([]*domain.Post, int64, error)
	// Delete returns domain.ErrPostNotFound when nothing was removed.
	Delete(ctx context.Context, id int64) error
}
