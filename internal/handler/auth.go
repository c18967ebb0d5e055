package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rebbitapp/rebbit-api/internal/config"
	"github.com/rebbitapp/rebbit-api/internal/middleware"
	"github.com/rebbitapp/rebbit-api/internal/model"
	"github.com/rebbitapp/rebbit-api/internal/repository"
	"github.com/rebbitapp/rebbit-api/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	Posts    PostStore
	Comments CommentStore
	Mail     MailSender
	Logger   *zap.Logger
}

func NewAuthHandler(cfg config.Config, u UserStore, p PostStore, cm CommentStore, mail MailSender, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Posts: p, Comments: cm, Mail: mail, Logger: logger}
}

// ----- DTOs -----

type registerReq struct {
	Pseudo    string `json:"pseudo" validate:"required"`
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Birthdate string `json:"birthdate" validate:"required"`
	Role      string `json:"role"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordReq struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordReq struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type changeEmailReq struct {
	NewEmail string `json:"newEmail" validate:"required,email"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type tokenResp struct {
	Token  string `json:"token"`
	Pseudo string `json:"pseudo"`
}

// Register creates a user, issues a token and fires the confirmation mail.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	birthdate, err := time.Parse("2006-01-02", req.Birthdate)
	if err != nil {
		return validationFailed(c, "birthdate must be a date in YYYY-MM-DD format")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u := model.User{
		Pseudo:    strings.TrimSpace(req.Pseudo),
		Name:      strings.TrimSpace(req.Name),
		Surname:   strings.TrimSpace(req.Surname),
		Email:     req.Email,
		Birthdate: birthdate,
		Role:      req.Role,
	}
	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		h.Logger.Error("register: hash password", zap.Error(err))
		return serverError(c)
	}
	if err := h.Users.Create(ctx, &u, hash); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return validationFailed(c, "a user with this email already exists")
		}
		h.Logger.Error("register: create user", zap.Error(err))
		return serverError(c)
	}

	token, err := utils.NewAuthToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.TokenTTLMin)
	if err != nil {
		h.Logger.Error("register: issue token", zap.Error(err))
		return serverError(c)
	}

	h.Mail.Send(u.Email, "Registration confirmation",
		fmt.Sprintf("Hello %s %s,\n\nThank you for registering on Rebbit.\n\nYour pseudo: %s\nYour email: %s\n\nRegards,\nThe Rebbit team",
			u.Surname, u.Name, u.Pseudo, u.Email))

	return c.JSON(http.StatusOK, tokenResp{Token: token, Pseudo: u.Pseudo})
}

// Login authenticates a user and returns a fresh token. Failures are
// deliberately indistinguishable: unknown email and wrong password produce
// the same generic message.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return validationFailed(c, "invalid credentials")
		}
		h.Logger.Error("login: query user", zap.Error(err))
		return serverError(c)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return validationFailed(c, "invalid credentials")
	}

	token, err := utils.NewAuthToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.TokenTTLMin)
	if err != nil {
		h.Logger.Error("login: issue token", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, tokenResp{Token: token, Pseudo: u.Pseudo})
}

// ForgotPassword mails a short-lived reset link encoding only the user id.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return validationFailed(c, "user not found")
		}
		h.Logger.Error("forgot-password: query user", zap.Error(err))
		return serverError(c)
	}

	token, err := utils.NewResetToken(h.Cfg.JWTSecret, u.ID, h.Cfg.TokenTTLMin)
	if err != nil {
		h.Logger.Error("forgot-password: issue token", zap.Error(err))
		return serverError(c)
	}

	resetURL := fmt.Sprintf("%s?token=%s", h.Cfg.ResetBaseURL, token)
	h.Mail.Send(u.Email, "Password reset",
		fmt.Sprintf("You requested a password reset. Follow this link to choose a new password:\n\n%s", resetURL))

	return c.JSON(http.StatusOK, echo.Map{"msg": "reset email sent"})
}

// ResetPassword redeems a reset token and overwrites the password hash.
// The token stays valid for its full TTL even after use.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	userID, err := utils.ParseResetToken(h.Cfg.JWTSecret, req.Token)
	if err != nil {
		return validationFailed(c, "invalid or expired token")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return validationFailed(c, "user not found")
		}
		h.Logger.Error("reset-password: query user", zap.Error(err))
		return serverError(c)
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		h.Logger.Error("reset-password: hash password", zap.Error(err))
		return serverError(c)
	}
	if err := h.Users.UpdatePassword(ctx, userID, hash); err != nil {
		h.Logger.Error("reset-password: update", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "password reset successfully"})
}

// CurrentUser returns the caller's profile, password hash excluded.
func (h *AuthHandler) CurrentUser(c echo.Context) error {
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
		h.Logger.Error("current-user: query", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, u)
}

// ChangeEmail updates the caller's email address.
func (h *AuthHandler) ChangeEmail(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	var req changeEmailReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Users.UpdateEmail(ctx, userID, req.NewEmail); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, "user not found")
		case errors.Is(err, repository.ErrEmailExists):
			return validationFailed(c, "a user with this email already exists")
		}
		h.Logger.Error("change-email: update", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "email updated successfully"})
}

// ChangePassword verifies the current password before storing a new one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	var req changePasswordReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		h.Logger.Error("change-password: query", zap.Error(err))
		return serverError(c)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "current password is incorrect"})
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		h.Logger.Error("change-password: hash", zap.Error(err))
		return serverError(c)
	}
	if err := h.Users.UpdatePassword(ctx, userID, hash); err != nil {
		h.Logger.Error("change-password: update", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "password changed successfully"})
}

// ChangePseudo updates the caller's display name.
func (h *AuthHandler) ChangePseudo(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	var req struct {
		NewPseudo string `json:"newPseudo"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.NewPseudo) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"msg": "pseudo is required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Users.UpdatePseudo(ctx, userID, strings.TrimSpace(req.NewPseudo)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		h.Logger.Error("change-pseudo: update", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "pseudo changed successfully"})
}

// DeleteAccount is the self-service deletion path: owned posts (with their
// comments) and comments are hard-deleted, then the account itself.
func (h *AuthHandler) DeleteAccount(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Posts.DeleteByUser(ctx, userID); err != nil {
		h.Logger.Error("delete-account: delete posts", zap.Error(err))
		return serverError(c)
	}
	if err := h.Comments.DeleteByUser(ctx, userID); err != nil {
		h.Logger.Error("delete-account: delete comments", zap.Error(err))
		return serverError(c)
	}
	if err := h.Users.Delete(ctx, userID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.Logger.Error("delete-account: delete user", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "account deleted successfully"})
}

// GenerateToken re-issues a fresh token for the authenticated caller.
func (h *AuthHandler) GenerateToken(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return unauthorized(c, "invalid token")
	}
	token, err := utils.NewAuthToken(h.Cfg.JWTSecret, userID, middleware.Role(c), h.Cfg.TokenTTLMin)
	if err != nil {
		h.Logger.Error("generate-token: issue", zap.Error(err))
		return serverError(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}
