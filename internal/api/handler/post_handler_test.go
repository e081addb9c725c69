package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/postboard/postboard-api/internal/core/domain"
)

type stubPostService struct {
	createFn func(ctx context.Context, actorID, content string) (*domain.Post, error)
	deleteFn func(ctx context.Context, actorID string, postID int64) error
	feedFn   func(ctx context.Context, req domain.PageRequest) (*domain.FeedPage, error)
}

func (s *stubPostService) CreatePost(ctx context.Context, actorID, content string) (*domain.Post, error) {
	return s.createFn(ctx, actorID, content)
}

func (s *stubPostService) DeletePost(ctx context.Context, actorID string, postID int64) error {
	return s.deleteFn(ctx, actorID, postID)
}

func (s *stubPostService) ListFeed(ctx context.Context, req domain.PageRequest) (*domain.FeedPage, error) {
	return s.feedFn(ctx, req)
}

func TestPostHandler_Create(t *testing.T) {
	e := newTestEcho()
	stub := &stubPostService{
		createFn: func(ctx context.Context, actorID, content string) (*domain.Post, error) {
			if actorID != "acc-1" || content != "hello" {
				t.Fatalf("unexpected args: %s %s", actorID, content)
			}
			return &domain.Post{ID: 42, Content: content, OwnerID: actorID}, nil
		},
	}
	handler := NewPostHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/posts", `{"content":"hello"}`), rec)
	c.Set(AccountIDKey, "acc-1")

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/posts/42" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestPostHandler_Create_RequiresContent(t *testing.T) {
	e := newTestEcho()
	handler := NewPostHandler(&stubPostService{})

	c := e.NewContext(jsonRequest(http.MethodPost, "/posts", `{}`), httptest.NewRecorder())
	c.Set(AccountIDKey, "acc-1")

	if err := handler.Create(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPostHandler_Feed_DefaultsAndCap(t *testing.T) {
	tests := []struct {
		query     string
		wantIndex int
		wantSize  int
	}{
		{query: "", wantIndex: 0, wantSize: 10},
		{query: "?page=2&page_size=5", wantIndex: 2, wantSize: 5},
		{query: "?page_size=1000", wantIndex: 0, wantSize: 100},
	}

	for _, tt := range tests {
		e := newTestEcho()
		stub := &stubPostService{
			feedFn: func(ctx context.Context, req domain.PageRequest) (*domain.FeedPage, error) {
				if req.Index != tt.wantIndex || req.Size != tt.wantSize {
					t.Fatalf("%q: got %+v", tt.query, req)
				}
				return domain.NewFeedPage(req, nil, 0), nil
			},
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/posts"+tt.query, nil), rec)

		if err := NewPostHandler(stub).Feed(c); err != nil {
			t.Fatalf("%q: handler error: %v", tt.query, err)
		}
	}
}

func TestPostHandler_Feed_Envelope(t *testing.T) {
	e := newTestEcho()
	stub := &stubPostService{
		feedFn: func(ctx context.Context, req domain.PageRequest) (*domain.FeedPage, error) {
			rows := []*domain.Post{{ID: 2, Content: "b", OwnerUsername: "bob"}, {ID: 1, Content: "a", OwnerUsername: "amy"}}
			return domain.NewFeedPage(req, rows, 12), nil
		},
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/posts?page=0&page_size=2", nil), rec)
	if err := NewPostHandler(stub).Feed(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp feedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Items) != 2 || resp.Items[0].Username != "bob" {
		t.Fatalf("unexpected items: %+v", resp.Items)
	}
	if resp.TotalPages != 6 || resp.TotalElements != 2 || resp.TotalItems != 12 || resp.PageSize != 2 {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
}

func TestPostHandler_Feed_BadQuery(t *testing.T) {
	e := newTestEcho()
	handler := NewPostHandler(&stubPostService{})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/posts?page=abc", nil), httptest.NewRecorder())

	var he *echo.HTTPError
	if err := handler.Feed(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestPostHandler_Delete(t *testing.T) {
	tests := []struct {
		name    string
		param   string
		svcErr  error
		wantErr error
		code    int
	}{
		{name: "deleted", param: "7", code: http.StatusNoContent},
		{name: "forbidden", param: "7", svcErr: domain.ErrForbidden, wantErr: domain.ErrForbidden},
		{name: "missing", param: "7", svcErr: domain.ErrPostNotFound, wantErr: domain.ErrPostNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			stub := &stubPostService{
				deleteFn: func(ctx context.Context, actorID string, postID int64) error {
					if actorID != "acc-1" || postID != 7 {
						t.Fatalf("unexpected args: %s %d", actorID, postID)
					}
					return tt.svcErr
				},
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/posts/"+tt.param, nil), rec)
			c.SetParamNames("id")
			c.SetParamValues(tt.param)
			c.Set(AccountIDKey, "acc-1")

			err := NewPostHandler(stub).Delete(c)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
		})
	}
}

func TestPostHandler_Delete_BadID(t *testing.T) {
	e := newTestEcho()
	handler := NewPostHandler(&stubPostService{})

	c := e.NewContext(httptest.NewRequest(http.MethodDelete, "/posts/abc", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")
	c.Set(AccountIDKey, "acc-1")

	var he *echo.HTTPError
	if err := handler.Delete(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
