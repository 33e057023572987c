package service

import (
	"errors"
	"fmt"

	"github.com/nhle/todocal/internal/store"
)

// ErrNotFound reports a record that is absent or owned by someone else.
// It is the store's sentinel, so errors.Is matches either name.
var ErrNotFound = store.ErrNotFound

// ErrInvalidCredentials is the single login failure. Unknown users and
// wrong passwords are reported identically.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ValidationError reports caller input that breaks a field rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a uniqueness violation such as a taken username.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
