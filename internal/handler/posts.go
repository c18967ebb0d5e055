package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rebbitapp/rebbit-api/internal/middleware"
	"github.com/rebbitapp/rebbit-api/internal/model"
	"github.com/rebbitapp/rebbit-api/internal/repository"
)

// PostsHandler bundles dependencies for the /api/posts routes.
type PostsHandler struct {
	Posts    PostStore
	Comments CommentStore
	Logger   *zap.Logger
}

func NewPostsHandler(p PostStore, cm CommentStore, logger *zap.Logger) *PostsHandler {
	return &PostsHandler{Posts: p, Comments: cm, Logger: logger}
}

type createPostReq struct {
	Title   string   `json:"title" validate:"required"`
	Content string   `json:"content" validate:"required"`
	Tags    []string `json:"tags" validate:"required,min=1"`
	State   string   `json:"state" validate:"required,oneof=draft published archived"`
	Images  []string `json:"images"`
}

// updatePostReq accepts tags either as an array or as a comma-joined
// string; the raw message is normalized at the boundary before it reaches
// any domain logic.
type updatePostReq struct {
	Title   string          `json:"title" validate:"required"`
	Content string          `json:"content" validate:"required"`
	Tags    json.RawMessage `json:"tags" validate:"required"`
	State   string          `json:"state" validate:"required,oneof=draft published archived"`
}

// decodeTags resolves the array-or-string tag input into a flat list.
func (r updatePostReq) decodeTags() ([]string, bool) {
	var arr []string
	if err := json.Unmarshal(r.Tags, &arr); err == nil {
		return arr, true
	}
	var s string
	if err := json.Unmarshal(r.Tags, &s); err == nil {
		return splitTags(s), true
	}
	return nil, false
}

// Create handles POST /api/posts. Tags are lower-cased and trimmed before
// the post is persisted.
func (h *PostsHandler) Create(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	var req createPostReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	post := model.Post{
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
		Tags:    normalizeTags(req.Tags),
		State:   req.State,
		Images:  req.Images,
	}
	if err := h.Posts.Create(ctx, &post); err != nil {
		h.Logger.Error("posts: create", zap.Error(err))
		return serverError(c)
	}

	created, err := h.Posts.GetByID(ctx, post.ID)
	if err != nil {
		h.Logger.Error("posts: reload created", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, created)
}

// List handles GET /api/posts: all posts, author populated, newest first.
func (h *PostsHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	posts, err := h.Posts.List(ctx)
	if err != nil {
		h.Logger.Error("posts: list", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, posts)
}

// GetByID handles GET /api/posts/:id with author and visible comments
// populated.
func (h *PostsHandler) GetByID(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return notFound(c, "post not found")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	post, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "post not found")
		}
		h.Logger.Error("posts: get", zap.Error(err))
		return serverError(c)
	}
	post.Comments, err = h.Comments.ListByPost(ctx, id)
	if err != nil {
		h.Logger.Error("posts: list comments", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, post)
}

// PopularTags handles GET /api/posts/tags/popular: tag frequencies across
// all posts, top 10, recomputed on every request.
func (h *PostsHandler) PopularTags(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	lists, err := h.Posts.AllTags(ctx)
	if err != nil {
		h.Logger.Error("posts: all tags", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, popularTags(lists, 10))
}

// ByTag handles GET /api/posts/tags/:tag.
func (h *PostsHandler) ByTag(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	posts, err := h.Posts.ListByTag(ctx, c.Param("tag"))
	if err != nil {
		h.Logger.Error("posts: list by tag", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, posts)
}

// ToggleUpvote handles PUT /api/posts/upvote/:id. The store performs the
// add-or-remove atomically; the updated post is returned.
func (h *PostsHandler) ToggleUpvote(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return notFound(c, "post not found")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Posts.ToggleUpvote(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "post not found")
		}
		h.Logger.Error("posts: toggle upvote", zap.Error(err))
		return serverError(c)
	}
	post, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		h.Logger.Error("posts: reload after toggle", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, post)
}

// UpdateState handles PUT /api/posts/state/:id (owner or admin).
func (h *PostsHandler) UpdateState(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return notFound(c, "post not found")
	}
	var req struct {
		State string `json:"state" validate:"required,oneof=draft published archived"`
	}
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	post, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "post not found")
		}
		h.Logger.Error("posts: get for state update", zap.Error(err))
		return serverError(c)
	}
	if post.UserID != userID && middleware.Role(c) != model.RoleAdmin {
		return unauthorized(c, "user not authorized")
	}

	if err := h.Posts.UpdateState(ctx, id, req.State); err != nil {
		h.Logger.Error("posts: update state", zap.Error(err))
		return serverError(c)
	}
	updated, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		h.Logger.Error("posts: reload after state update", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, updated)
}

// Update handles PUT /api/posts/:id (owner or admin).
func (h *PostsHandler) Update(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return notFound(c, "post not found")
	}
	var req updatePostReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	tags, ok := req.decodeTags()
	if !ok {
		return validationFailed(c, "tags must be an array or a comma-joined string")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	post, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "post not found")
		}
		h.Logger.Error("posts: get for update", zap.Error(err))
		return serverError(c)
	}
	if post.UserID != userID && middleware.Role(c) != model.RoleAdmin {
		return unauthorized(c, "user not authorized")
	}

	if err := h.Posts.Update(ctx, id, req.Title, req.Content, normalizeTags(tags), req.State); err != nil {
		h.Logger.Error("posts: update", zap.Error(err))
		return serverError(c)
	}
	updated, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		h.Logger.Error("posts: reload after update", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/posts/:id (owner or admin). The post's
// comments are removed with it.
func (h *PostsHandler) Delete(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return notFound(c, "post not found")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	post, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "post not found")
		}
		h.Logger.Error("posts: get for delete", zap.Error(err))
		return serverError(c)
	}
	if post.UserID != userID && middleware.Role(c) != model.RoleAdmin {
		return unauthorized(c, "user not authorized")
	}

	if err := h.Posts.Delete(ctx, id); err != nil {
		h.Logger.Error("posts: delete", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "post and comments deleted"})
}
