package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rebbitapp/rebbit-api/internal/config"
	"github.com/rebbitapp/rebbit-api/internal/handler"
)

// Protected routes must resolve at their canonical slash-less paths. A
// tokenless request reaching the auth middleware answers 401; Echo's 404
// would mean the route never matched. The middleware runs before any
// store is touched, so the handlers can be wired with nil stores here.
func TestProtectedRoutesMatchCanonicalPaths(t *testing.T) {
	e := echo.New()
	logger := zap.NewNop()
	RegisterUsers(e, handler.NewUsersHandler(config.Config{}, nil, nil, nil, logger), "secret")
	RegisterPosts(e, handler.NewPostsHandler(nil, nil, logger), "secret")
	RegisterMyList(e, handler.NewMyListHandler(nil, logger), "secret")
	RegisterUpload(e, handler.NewUploadHandler(t.TempDir(), logger), "secret")

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodDelete, "/api/users"},
		{http.MethodGet, "/api/users/me"},
		{http.MethodPost, "/api/posts"},
		{http.MethodPut, "/api/posts/upvote/1"},
		{http.MethodPut, "/api/mylist/tags"},
		{http.MethodPost, "/api/upload"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401 (route matched, token missing)", rec.Code)
			}
		})
	}
}

// stubPosts overrides only the method under test; the embedded nil
// interface supplies the rest of the method set.
type stubPosts struct {
	handler.PostStore
	allTagsCalled bool
}

func (s *stubPosts) AllTags(_ context.Context) ([][]string, error) {
	s.allTagsCalled = true
	return nil, nil
}

// Literal post routes must win over the :id parameter.
func TestPostTagRoutesNotShadowedByID(t *testing.T) {
	e := echo.New()
	posts := &stubPosts{}
	RegisterPosts(e, handler.NewPostsHandler(posts, nil, zap.NewNop()), "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/posts/tags/popular", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !posts.allTagsCalled {
		t.Fatal("popular-tags handler was not reached")
	}
}
