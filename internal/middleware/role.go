package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/rebbitapp/rebbit-api/internal/model"
)

// RequireAdmin rejects continuation with 403 Forbidden when the identity
// attached by TokenAuth does not carry the admin role. It assumes TokenAuth
// ran earlier in the chain.
func RequireAdmin() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if Role(c) != model.RoleAdmin {
                return c.JSON(http.StatusForbidden, echo.Map{"msg": "access denied, admin only"})
            }
            return next(c)
        }
    }
}
