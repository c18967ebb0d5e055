package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rebbitapp/rebbit-api/internal/config"
	"github.com/rebbitapp/rebbit-api/internal/middleware"
	"github.com/rebbitapp/rebbit-api/internal/repository"
	"github.com/rebbitapp/rebbit-api/internal/utils"
)

// UsersHandler bundles dependencies for the /api/users routes.
type UsersHandler struct {
	Cfg      config.Config
	Users    UserStore
	Posts    PostStore
	Comments CommentStore
	Logger   *zap.Logger
}

func NewUsersHandler(cfg config.Config, u UserStore, p PostStore, cm CommentStore, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{Cfg: cfg, Users: u, Posts: p, Comments: cm, Logger: logger}
}

// ByIDs handles POST /api/users/by-ids: bulk id-to-pseudo resolution.
func (h *UsersHandler) ByIDs(c echo.Context) error {
	var req struct {
		IDs []uint64 `json:"ids"`
	}
	if err := c.Bind(&req); err != nil {
		return validationFailed(c, "ids must be an array of user ids")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	refs, err := h.Users.PseudosByIDs(ctx, req.IDs)
	if err != nil {
		h.Logger.Error("users: pseudos by ids", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, refs)
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		h.Logger.Error("users: me", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, u)
}

// UpdatePseudo handles PUT /api/users/pseudo.
func (h *UsersHandler) UpdatePseudo(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	var req struct {
		Pseudo string `json:"pseudo" validate:"required"`
	}
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	pseudo := strings.TrimSpace(req.Pseudo)
	if err := h.Users.UpdatePseudo(ctx, userID, pseudo); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		h.Logger.Error("users: update pseudo", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "pseudo updated successfully", "pseudo": pseudo})
}

// UpdatePassword handles PUT /api/users/password.
func (h *UsersHandler) UpdatePassword(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	var req struct {
		Password string `json:"password" validate:"required,min=6"`
	}
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		h.Logger.Error("users: hash password", zap.Error(err))
		return serverError(c)
	}
	if err := h.Users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		h.Logger.Error("users: update password", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "password updated successfully"})
}

// DeleteAccount handles DELETE /api/users: the self-service deletion
// cascade (hard-deletes owned posts and comments, then the account).
func (h *UsersHandler) DeleteAccount(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Posts.DeleteByUser(ctx, userID); err != nil {
		h.Logger.Error("users: delete posts", zap.Error(err))
		return serverError(c)
	}
	if err := h.Comments.DeleteByUser(ctx, userID); err != nil {
		h.Logger.Error("users: delete comments", zap.Error(err))
		return serverError(c)
	}
	if err := h.Users.Delete(ctx, userID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.Logger.Error("users: delete account", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "account deleted successfully"})
}

// PostsByUser handles GET /api/users/:id/posts.
func (h *UsersHandler) PostsByUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return notFound(c, "user not found")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	posts, err := h.Posts.ListByUser(ctx, id)
	if err != nil {
		h.Logger.Error("users: posts by user", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, posts)
}

// CommentsByUser handles GET /api/users/:id/comments.
func (h *UsersHandler) CommentsByUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return notFound(c, "user not found")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	comments, err := h.Comments.ListByUser(ctx, id)
	if err != nil {
		h.Logger.Error("users: comments by user", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, comments)
}

// upvoteEntry is one row of the upvote history union.
type upvoteEntry struct {
	Type    string      `json:"type"`
	Content string      `json:"content"`
	Date    interface{} `json:"date"`
	PostID  uint64      `json:"postId"`
}

// UpvotesByUser handles GET /api/users/:id/upvotes: the union of posts and
// comments the user has upvoted.
func (h *UsersHandler) UpvotesByUser(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return notFound(c, "user not found")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	posts, err := h.Posts.ListUpvotedBy(ctx, id)
	if err != nil {
		h.Logger.Error("users: upvoted posts", zap.Error(err))
		return serverError(c)
	}
	comments, err := h.Comments.ListUpvotedBy(ctx, id)
	if err != nil {
		h.Logger.Error("users: upvoted comments", zap.Error(err))
		return serverError(c)
	}

	entries := make([]upvoteEntry, 0, len(posts)+len(comments))
	for _, p := range posts {
		entries = append(entries, upvoteEntry{Type: "Post", Content: p.Title, Date: p.CreatedAt, PostID: p.ID})
	}
	for _, cm := range comments {
		entries = append(entries, upvoteEntry{Type: "Comment", Content: cm.Content, Date: cm.CreatedAt, PostID: cm.PostID})
	}
	return c.JSON(http.StatusOK, entries)
}
