// Package validation carries request validation failures from the domain
// services to the HTTP layer.
package validation

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Error describes input that a service refused. Handlers answer it with 400.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return e.Msg }

func New(msg string) error { return &Error{Msg: msg} }

func Errorf(format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// Is reports whether err or anything it wraps is a validation Error.
func Is(err error) bool {
	var v *Error
	return errors.As(err, &v)
}
