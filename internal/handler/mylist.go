package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rebbitapp/rebbit-api/internal/middleware"
	"github.com/rebbitapp/rebbit-api/internal/repository"
)

// MyListHandler bundles dependencies for the /api/mylist routes. All
// operations act on the caller's own list; saving an already-saved item
// removes it.
type MyListHandler struct {
	Lists  ListStore
	Logger *zap.Logger
}

func NewMyListHandler(l ListStore, logger *zap.Logger) *MyListHandler {
	return &MyListHandler{Lists: l, Logger: logger}
}

// TogglePost handles PUT /api/mylist/posts/:id.
func (h *MyListHandler) TogglePost(c echo.Context) error {
	return h.toggle(c, "id", func(listID, refID uint64) error {
		ctx, cancel := dbCtx(c)
		defer cancel()
		return h.Lists.TogglePost(ctx, listID, refID)
	})
}

// ToggleComment handles PUT /api/mylist/comments/:id.
func (h *MyListHandler) ToggleComment(c echo.Context) error {
	return h.toggle(c, "id", func(listID, refID uint64) error {
		ctx, cancel := dbCtx(c)
		defer cancel()
		return h.Lists.ToggleComment(ctx, listID, refID)
	})
}

// SetTags handles PUT /api/mylist/tags: the free-text tag string is split
// on commas, trimmed and replaces the list's tags wholesale.
func (h *MyListHandler) SetTags(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	var req struct {
		Tags string `json:"tags" validate:"required"`
	}
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	list, err := h.Lists.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "list not found")
		}
		h.Logger.Error("mylist: get for tags", zap.Error(err))
		return serverError(c)
	}
	if err := h.Lists.SetTags(ctx, list.ID, splitTags(req.Tags)); err != nil {
		h.Logger.Error("mylist: set tags", zap.Error(err))
		return serverError(c)
	}
	updated, err := h.Lists.GetByUser(ctx, userID)
	if err != nil {
		h.Logger.Error("mylist: reload after tags", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *MyListHandler) toggle(c echo.Context, param string, op func(listID, refID uint64) error) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	refID, err := paramID(c, param)
	if err != nil {
		return notFound(c, "not found")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	list, err := h.Lists.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "list not found")
		}
		h.Logger.Error("mylist: get", zap.Error(err))
		return serverError(c)
	}
	if err := op(list.ID, refID); err != nil {
		h.Logger.Error("mylist: toggle", zap.Error(err))
		return serverError(c)
	}
	updated, err := h.Lists.GetByUser(ctx, userID)
	if err != nil {
		h.Logger.Error("mylist: reload after toggle", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, updated)
}
