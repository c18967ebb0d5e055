package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// fieldError is one entry of the validation error envelope.
type fieldError struct {
	Msg string `json:"msg"`
}

// validationFailed writes the 400 envelope: {"errors":[{"msg":...},...]}.
func validationFailed(c echo.Context, msgs ...string) error {
	errs := make([]fieldError, 0, len(msgs))
	for _, m := range msgs {
		errs = append(errs, fieldError{Msg: m})
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"msg": msg})
}

func notFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, echo.Map{"msg": msg})
}

// serverError degrades any unexpected failure to a generic plain-text 500;
// server-side detail is logged by the caller, never sent to the client.
func serverError(c echo.Context) error {
	return c.String(http.StatusInternalServerError, "Server error")
}
