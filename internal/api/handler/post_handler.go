package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/postboard/postboard-api/internal/api/metrics"
	"github.com/postboard/postboard-api/internal/core/domain"
	"github.com/postboard/postboard-api/internal/core/ports"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// PostHandler handles HTTP requests for posts and the feed.
type PostHandler struct {
	service ports.PostService
}

func NewPostHandler(service ports.PostService) *PostHandler {
	return &PostHandler{service: service}
}

// Feed handles GET /posts.
//
// @Summary      List the feed, newest first
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int  false  "Zero-based page index"  default(0)
// @Param        page_size  query     int  false  "Items per page, capped at 100"  default(10)
// @Success      200        {object}  feedResponse
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Router       /posts [get]
func (h *PostHandler) Feed(c echo.Context) error {
	page, size := 0, defaultPageSize
	if err := echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("page_size", &size).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "page and page_size must be integers").SetInternal(err)
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	result, err := h.service.ListFeed(c.Request().Context(), domain.PageRequest{Index: page, Size: size})
	if err != nil {
		return err
	}
	metrics.FeedPageSize.Observe(float64(size))

	items := make([]postSummaryResponse, 0, len(result.Items))
	for _, it := range result.Items {
		items = append(items, postSummaryResponse{ID: it.ID, Content: it.Content, Username: it.Username})
	}
	return c.JSON(http.StatusOK, feedResponse{
		Items:         items,
		Page:          result.Page,
		PageSize:      result.PageSize,
		TotalPages:    result.TotalPages,
		TotalElements: result.TotalElements,
		TotalItems:    result.TotalItems,
	})
}

// Create handles POST /posts.
//
// @Summary      Create a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPostRequest  true  "Post content, at most 280 characters"
// @Success      201   {object}  createPostResponse
// @Header       201   {string}  Location  "/posts/{id}"
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req createPostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.service.CreatePost(c.Request().Context(), actor, req.Content)
	if err != nil {
		return err
	}
	metrics.PostsCreatedTotal.Inc()

	c.Response().Header().Set(echo.HeaderLocation, "/posts/"+strconv.FormatInt(post.ID, 10))
	return c.JSON(http.StatusCreated, createPostResponse{ID: post.ID})
}

// Delete handles DELETE /posts/:id.
//
// @Summary      Delete a post
// @Description  Owners may delete their own posts; admins may delete any post.
// @Tags         posts
// @Security     BearerAuth
// @Param        id   path      int  true  "Post id"
// @Success      204  "No Content"
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /posts/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "post id must be a positive integer")
	}

	err = h.service.DeletePost(c.Request().Context(), actor, id)
	switch {
	case err == nil:
		metrics.PostDeletionsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	case errors.Is(err, domain.ErrForbidden):
		metrics.PostDeletionsTotal.WithLabelValues(metrics.ResultForbidden).Inc()
		return err
	case errors.Is(err, domain.ErrPostNotFound):
		metrics.PostDeletionsTotal.WithLabelValues(metrics.ResultNotFound).Inc()
		return err
	default:
		metrics.PostDeletionsTotal.WithLabelValues(metrics.ResultError).Inc()
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
