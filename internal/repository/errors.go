// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them onto the HTTP taxonomy: ErrNotFound becomes a 404, ErrEmailExists
// becomes a 400 validation failure on registration.
package repository

import "errors"

// ErrNotFound is returned when a record does not exist. Handlers
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert or update would violate
// the unique email constraint on users.
var ErrEmailExists = errors.New("email already exists")
