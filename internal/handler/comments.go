package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rebbitapp/rebbit-api/internal/middleware"
	"github.com/rebbitapp/rebbit-api/internal/model"
	"github.com/rebbitapp/rebbit-api/internal/repository"
)

// CommentsHandler bundles dependencies for the /api/comments routes.
type CommentsHandler struct {
	Comments CommentStore
	Logger   *zap.Logger
}

func NewCommentsHandler(cm CommentStore, logger *zap.Logger) *CommentsHandler {
	return &CommentsHandler{Comments: cm, Logger: logger}
}

type createCommentReq struct {
	Post    uint64 `json:"post" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// Create handles POST /api/comments.
func (h *CommentsHandler) Create(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	var req createCommentReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	comment := model.Comment{PostID: req.Post, UserID: userID, Content: req.Content}
	if err := h.Comments.Create(ctx, &comment); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "post not found")
		}
		h.Logger.Error("comments: create", zap.Error(err))
		return serverError(c)
	}

	created, err := h.Comments.GetByID(ctx, comment.ID)
	if err != nil {
		h.Logger.Error("comments: reload created", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, created)
}

// MyComments handles GET /api/comments/user: the caller's comments with
// parent post titles attached.
func (h *CommentsHandler) MyComments(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	comments, err := h.Comments.ListByUser(ctx, userID)
	if err != nil {
		h.Logger.Error("comments: list mine", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, comments)
}

// ListByPost handles GET /api/comments/:postId. Soft-deleted comments are
// excluded.
func (h *CommentsHandler) ListByPost(c echo.Context) error {
	postID, err := paramID(c, "postId")
	if err != nil {
		return notFound(c, "post not found")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	comments, err := h.Comments.ListByPost(ctx, postID)
	if err != nil {
		h.Logger.Error("comments: list by post", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, comments)
}

// Update handles PUT /api/comments/:id (owner or admin).
func (h *CommentsHandler) Update(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return notFound(c, "comment not found")
	}
	var req struct {
		Content string `json:"content" validate:"required"`
	}
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	comment, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "comment not found")
		}
		h.Logger.Error("comments: get for update", zap.Error(err))
		return serverError(c)
	}
	if comment.UserID != userID && middleware.Role(c) != model.RoleAdmin {
		return unauthorized(c, "user not authorized")
	}

	if err := h.Comments.UpdateContent(ctx, id, req.Content); err != nil {
		h.Logger.Error("comments: update", zap.Error(err))
		return serverError(c)
	}
	updated, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		h.Logger.Error("comments: reload after update", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, updated)
}

// ToggleUpvote handles PUT /api/comments/upvote/:id.
func (h *CommentsHandler) ToggleUpvote(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return notFound(c, "comment not found")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Comments.ToggleUpvote(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "comment not found")
		}
		h.Logger.Error("comments: toggle upvote", zap.Error(err))
		return serverError(c)
	}
	comment, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		h.Logger.Error("comments: reload after toggle", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, comment)
}

// Delete handles DELETE /api/comments/:id (owner or admin) and returns the
// post's remaining comment count alongside the confirmation.
func (h *CommentsHandler) Delete(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return notFound(c, "comment not found")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	comment, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "comment not found")
		}
		h.Logger.Error("comments: get for delete", zap.Error(err))
		return serverError(c)
	}
	if comment.UserID != userID && middleware.Role(c) != model.RoleAdmin {
		return unauthorized(c, "user not authorized")
	}

	if err := h.Comments.Delete(ctx, id); err != nil {
		h.Logger.Error("comments: delete", zap.Error(err))
		return serverError(c)
	}
	count, err := h.Comments.CountByPost(ctx, comment.PostID)
	if err != nil {
		h.Logger.Error("comments: count after delete", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "comment deleted", "commentCount": count})
}
