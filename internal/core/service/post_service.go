package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/postboard/postboard-api/internal/core/domain"
	"github.com/postboard/postboard-api/internal/core/ports"
)

type PostService struct {
	posts    ports.PostRepository
	accounts ports.AccountRepository
	logger   zerolog.Logger
	now      func() time.Time
}

func NewPostService(posts ports.PostRepository, accounts ports.AccountRepository, logger zerolog.Logger) *PostService {
	return &PostService{posts: posts, accounts: accounts, logger: logger, now: time.Now}
}

// CreatePost stores content as a new post owned by the actor.
func (s *PostService) CreatePost(ctx context.Context, actorID, content string) (*domain.Post, error) {
	actor, err := resolveActor(ctx, s.accounts, actorID)
	if err != nil {
		return nil, err
	}

	content, err = domain.NormalizeContent(content)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.Create(ctx, &domain.Post{
		Content:       content,
		CreatedAt:     s.now().UTC(),
		OwnerID:       actor.ID,
		OwnerUsername: actor.Username,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("account_id", actor.ID).Msg("failed to create post")
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.logger.Info().Int64("post_id", post.ID).Str("account_id", actor.ID).Msg("post created")
	return post, nil
}

// DeletePost removes a post when the actor owns it or is an admin. A missing
// post is reported before authorization is evaluated.
func (s *PostService) DeletePost(ctx context.Context, actorID string, postID int64) error {
	actor, err := resolveActor(ctx, s.accounts, actorID)
	if err != nil {
		return err
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return err
	}

	if !domain.CanDelete(actor, post) {
		s.logger.Warn().Int64("post_id", postID).Str("account_id", actor.ID).Msg("post deletion denied")
		return domain.ErrForbidden
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return err
	}

	s.logger.Info().
		Int64("post_id", postID).
		Str("account_id", actor.ID).
		Bool("as_admin", post.OwnerID != actor.ID).
		Msg("post deleted")
	return nil
}

// ListFeed returns one page of posts, newest first. Pages past the end are
// empty but still carry the totals.
func (s *PostService) ListFeed(ctx context.Context, req domain.PageRequest) (*domain.FeedPage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	offset, ok := req.Offset()
	if !ok {
		// Only the total is needed for a page this far out.
		_, total, err := s.posts.ListPage(ctx, 0, 1)
		if err != nil {
			return nil, fmt.Errorf("list feed: %w", err)
		}
		return domain.NewFeedPage(req, nil, total), nil
	}

	rows, total, err := s.posts.ListPage(ctx, offset, req.Size)
	if err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}
	return domain.NewFeedPage(req, rows, total), nil
}
