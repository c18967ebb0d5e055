// Package handler contains the HTTP route handlers. Each handler group
// bundles the stores it needs; stores are small interfaces satisfied by the
// repository types so handlers can be exercised against in-memory fakes.
package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rebbitapp/rebbit-api/internal/model"
	"github.com/rebbitapp/rebbit-api/internal/repository"
)

// dbTimeout bounds every repository call issued from a handler.
const dbTimeout = 5 * time.Second

func dbCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

func paramID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// MailSender dispatches transactional email, fire-and-forget.
type MailSender interface {
	Send(to, subject, body string)
}

// UserStore is the slice of the user repository the handlers consume.
type UserStore interface {
	Create(ctx context.Context, u *model.User, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	PseudosByIDs(ctx context.Context, ids []uint64) ([]repository.PseudoRef, error)
	UpdatePseudo(ctx context.Context, id uint64, pseudo string) error
	UpdateEmail(ctx context.Context, id uint64, email string) error
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
	UpdateProfile(ctx context.Context, id uint64, pseudo, email string) error
	Delete(ctx context.Context, id uint64) error
}

type PostStore interface {
	Create(ctx context.Context, p *model.Post) error
	GetByID(ctx context.Context, id uint64) (model.Post, error)
	List(ctx context.Context) ([]model.Post, error)
	ListByTag(ctx context.Context, tag string) ([]model.Post, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Post, error)
	ListUpvotedBy(ctx context.Context, userID uint64) ([]model.Post, error)
	Update(ctx context.Context, id uint64, title, content string, tags []string, state string) error
	UpdateState(ctx context.Context, id uint64, state string) error
	Delete(ctx context.Context, id uint64) error
	ToggleUpvote(ctx context.Context, postID, userID uint64) (bool, error)
	AllTags(ctx context.Context) ([][]string, error)
	ArchiveByUser(ctx context.Context, userID uint64, placeholder string) error
	DeleteByUser(ctx context.Context, userID uint64) error
}

type CommentStore interface {
	Create(ctx context.Context, cm *model.Comment) error
	GetByID(ctx context.Context, id uint64) (model.Comment, error)
	ListByPost(ctx context.Context, postID uint64) ([]model.Comment, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Comment, error)
	ListUpvotedBy(ctx context.Context, userID uint64) ([]model.Comment, error)
	UpdateContent(ctx context.Context, id uint64, content string) error
	Delete(ctx context.Context, id uint64) error
	CountByPost(ctx context.Context, postID uint64) (int, error)
	ToggleUpvote(ctx context.Context, commentID, userID uint64) (bool, error)
	MarkDeletedByUser(ctx context.Context, userID uint64, placeholder string) error
	DeleteByUser(ctx context.Context, userID uint64) error
}

type ListStore interface {
	GetByUser(ctx context.Context, userID uint64) (model.MyList, error)
	TogglePost(ctx context.Context, listID, postID uint64) error
	ToggleComment(ctx context.Context, listID, commentID uint64) error
	SetTags(ctx context.Context, listID uint64, tags []string) error
}

type UpvoteStore interface {
	ListRecent(ctx context.Context, limit int) ([]model.UpvoteRecord, error)
}
