package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP status mapping.
type Kind int

const (
	KindStore Kind = iota
	KindValidation
	KindAuthentication
	KindNotFound
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func Authentication(msg string) *Error {
	return &Error{Kind: KindAuthentication, Msg: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Store wraps an underlying store failure with a descriptive message.
func Store(msg string, err error) *Error {
	return &Error{Kind: KindStore, Msg: msg, Err: err}
}

func IsNotFound(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == KindNotFound
}

func IsValidation(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == KindValidation
}

// StatusFor maps any error to an HTTP status, defaulting to 500.
func StatusFor(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status()
	}
	return http.StatusInternalServerError
}
