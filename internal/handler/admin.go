package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rebbitapp/rebbit-api/internal/repository"
)

// Placeholder text written over content removed by a moderator. Clients
// render these instead of the original text.
const (
	archivedPostContent   = "Post deleted"
	deletedCommentContent = "Comment deleted"
)

// AdminHandler serves the /api/admin routes. Every route is behind
// RequireAdmin, so handlers here trust the caller's role.
type AdminHandler struct {
	Users    UserStore
	Posts    PostStore
	Comments CommentStore
	Upvotes  UpvoteStore
	Logger   *zap.Logger
}

func NewAdminHandler(u UserStore, p PostStore, cm CommentStore, up UpvoteStore, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{Users: u, Posts: p, Comments: cm, Upvotes: up, Logger: logger}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		h.Logger.Error("admin: list users", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser handles GET /api/admin/users/:id.
func (h *AdminHandler) GetUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return notFound(c, "user not found")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		h.Logger.Error("admin: get user", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, user)
}

type adminUpdateUserReq struct {
	Pseudo string `json:"pseudo" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
}

// UpdateUser handles PUT /api/admin/users/:id.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return notFound(c, "user not found")
	}
	var req adminUpdateUserReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, id, req.Pseudo, req.Email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		if errors.Is(err, repository.ErrEmailExists) {
			return validationFailed(c, "a user with this email already exists")
		}
		h.Logger.Error("admin: update user", zap.Error(err))
		return serverError(c)
	}
	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		h.Logger.Error("admin: reload user", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser handles DELETE /api/admin/users/:id. Unlike self-service
// account deletion, moderation keeps the user's posts and comments in
// place with their content blanked out, then removes the account.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return notFound(c, "user not found")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		h.Logger.Error("admin: get user before delete", zap.Error(err))
		return serverError(c)
	}
	if err := h.Posts.ArchiveByUser(ctx, id, archivedPostContent); err != nil {
		h.Logger.Error("admin: archive posts", zap.Error(err))
		return serverError(c)
	}
	if err := h.Comments.MarkDeletedByUser(ctx, id, deletedCommentContent); err != nil {
		h.Logger.Error("admin: mark comments deleted", zap.Error(err))
		return serverError(c)
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		h.Logger.Error("admin: delete user", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "user deleted"})
}

// UserPosts handles GET /api/admin/users/:id/posts.
func (h *AdminHandler) UserPosts(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return notFound(c, "user not found")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	posts, err := h.Posts.ListByUser(ctx, id)
	if err != nil {
		h.Logger.Error("admin: user posts", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, posts)
}

// UserComments handles GET /api/admin/users/:id/comments.
func (h *AdminHandler) UserComments(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return notFound(c, "user not found")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	comments, err := h.Comments.ListByUser(ctx, id)
	if err != nil {
		h.Logger.Error("admin: user comments", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, comments)
}

// DeleteComment handles DELETE /api/admin/comments/:id.
func (h *AdminHandler) DeleteComment(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return notFound(c, "comment not found")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	cm, err := h.Comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "comment not found")
		}
		h.Logger.Error("admin: get comment", zap.Error(err))
		return serverError(c)
	}
	if err := h.Comments.Delete(ctx, id); err != nil {
		h.Logger.Error("admin: delete comment", zap.Error(err))
		return serverError(c)
	}
	count, err := h.Comments.CountByPost(ctx, cm.PostID)
	if err != nil {
		h.Logger.Error("admin: count comments", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "comment deleted", "commentCount": count})
}

// RecentUpvotes handles GET /api/admin/upvotes, the moderation audit
// trail of who upvoted what.
func (h *AdminHandler) RecentUpvotes(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	records, err := h.Upvotes.ListRecent(ctx, 100)
	if err != nil {
		h.Logger.Error("admin: recent upvotes", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, records)
}
