// internal/app/system/authprovider/errors.go
package authprovider

import (
	"errors"
	"fmt"
)

// Code classifies provider failures.
type Code string

const (
	CodeEmailInUse        Code = "auth/email-already-in-use"
	CodeWeakPassword      Code = "auth/weak-password"
	CodeInvalidEmail      Code = "auth/invalid-email"
	CodeInvalidCredential Code = "auth/invalid-credential"
	CodeTooManyRequests   Code = "auth/too-many-requests"
	CodeSessionExpired    Code = "auth/session-expired"
)

// Error is a provider failure with a user-facing message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a provider error.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError attaches a provider classification to err.
func WrapError(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

var (
	ErrEmailInUse        = NewError(CodeEmailInUse, "An account already exists with this email address")
	ErrWeakPassword      = NewError(CodeWeakPassword, "Password is too weak")
	ErrInvalidEmail      = NewError(CodeInvalidEmail, "Invalid email address")
	ErrInvalidCredential = NewError(CodeInvalidCredential, "Invalid email or password")
	ErrTooManyRequests   = NewError(CodeTooManyRequests, "Too many failed attempts. Please try again later")
	ErrSessionExpired    = NewError(CodeSessionExpired, "Your session has expired. Please sign in again")
)

// IsCode reports whether err carries code.
func IsCode(err error, code Code) bool {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Code == code
	}
	return false
}

// Message returns the user-facing message for err, or fallback when err is
// not a provider error.
func Message(err error, fallback string) string {
	var pErr *Error
	if errors.As(err, &pErr) && pErr.Message != "" {
		return pErr.Message
	}
	return fallback
}

// CodeOf returns the code carried by err, or "" for non-provider errors.
func CodeOf(err error) Code {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Code
	}
	return ""
}
