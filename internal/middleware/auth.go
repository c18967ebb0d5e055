package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/rebbitapp/rebbit-api/internal/utils"
)

// Context keys under which the authenticated identity is stored.
const (
    CtxUserID = "user_id"
    CtxRole   = "role"
)

// TokenHeader is the custom request header carrying the signed token.
const TokenHeader = "x-auth-token"

// TokenAuth returns an Echo middleware that validates the x-auth-token
// header and injects the authenticated user's id and role into the request
// context. There is no session store; every request is re-verified.
// Handlers read the identity via UserID(c) and Role(c).
func TokenAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := c.Request().Header.Get(TokenHeader)
            if raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "no token"})
            }
            claims, err := utils.ParseAuthToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"msg": "invalid token"})
            }
            c.Set(CtxUserID, claims.UserID)
            c.Set(CtxRole, claims.Role)
            return next(c)
        }
    }
}

// ErrNoIdentity is returned by UserID when no authenticated identity is
// attached to the context (the route was not wrapped by TokenAuth).
var ErrNoIdentity = errors.New("no authenticated identity in context")

// UserID extracts the authenticated user's id from the context.
func UserID(c echo.Context) (uint64, error) {
    id, ok := c.Get(CtxUserID).(uint64)
    if !ok {
        return 0, ErrNoIdentity
    }
    return id, nil
}

// Role extracts the authenticated user's role from the context. Returns an
// empty string when unauthenticated.
func Role(c echo.Context) string {
    role, _ := c.Get(CtxRole).(string)
    return role
}
