package handler

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to Echo's Validator interface.
// Handlers bind a DTO, call c.Validate, and translate failures into the
// {"errors":[{"msg":...}]} envelope via validationMessages.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	// Report field names by json tag so messages match the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (val *Validator) Validate(i interface{}) error {
	return val.v.Struct(i)
}

// validationMessages turns validator failures into user-facing strings.
func validationMessages(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"invalid request body"}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return msgs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must contain at least %s items", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// bindAndValidate binds the request body into dst and validates it. On
// failure it writes the 400 envelope and returns false; the handler should
// return nil immediately.
func bindAndValidate(c echo.Context, dst interface{}) (ok bool, err error) {
	if err := c.Bind(dst); err != nil {
		return false, validationFailed(c, "invalid request body")
	}
	if err := c.Validate(dst); err != nil {
		return false, validationFailed(c, validationMessages(err)...)
	}
	return true, nil
}
