package ports

import (
	"context"

	"github.com/postboard/postboard-api/internal/core/domain"
)

// PostService defines the post use cases. actorID is the verified token subject.
type PostService interface {
	CreatePost(ctx context.Context, actorID, content string) (*domain.Post, error)
	DeletePost(ctx context.Context, actorID string, postID int64) error
	ListFeed(ctx context.Context, req domain.PageRequest) (*domain.FeedPage, error)
}
