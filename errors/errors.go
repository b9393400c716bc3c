// Package errors wraps pkg/errors and includes some custom features such as
// error codes.
package errors

import (
	"github.com/pkg/errors"
)

// Code is an error code which can be used to check against a given error. For
// example, see the Is() method.
type Code string

// New builds an error carrying code, for later comparison with Is.
func New(code Code, message string) error {
	return errors.WithStack(codedError{
		Code:    code,
		Message: message,
	})
}

// Wrap annotates err with message and records a stack trace at the call
// site. Returns nil if err is nil.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Is is a fork of the Is() method from `pkg/errors` which takes as its target
// an error Code instead of an error.
func Is(err error, target Code) bool {
	match := codedError{
		Code: target,
	}
	return errors.Is(err, match)
}

// codedError is the fundamental type used by this package to provide coded
// errors.
type codedError struct {
	Code    Code
	Message string
}

func (ce codedError) Error() string {
	return ce.Message
}

func (ce codedError) Is(err error) bool {
	if e, ok := err.(codedError); ok && ce.Code == e.Code {
		return true
	}
	return false
}
