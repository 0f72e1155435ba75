package domain

import (
	"errors"
	"fmt"
)

type ErrCode string

const (
	CodeValidation ErrCode = "validation_error"
	CodeConflict   ErrCode = "conflict"
	CodeNotFound   ErrCode = "not_found"
)

// AppError is the business error surface of the whole service.
// None of these are retried internally: they are rule rejections, not
// transient failures.
type AppError struct {
	Code    ErrCode
	Message string
	Meta    map[string]string
}

func (e *AppError) Error() string {
	if len(e.Meta) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Meta)
}

func ErrValidation(msg string) error { return &AppError{Code: CodeValidation, Message: msg} }
func ErrValidationMeta(msg string, meta map[string]string) error {
	return &AppError{Code: CodeValidation, Message: msg, Meta: meta}
}
func ErrConflict(msg string) error { return &AppError{Code: CodeConflict, Message: msg} }

// ErrNotFound is also returned for cross-user access to a request or an
// unpublished event: callers must not be able to probe for entities they
// have no relationship to.
func ErrNotFound(msg string) error { return &AppError{Code: CodeNotFound, Message: msg} }

// ErrCacheMiss marks an absent cache entry so callers can fall through
// to the origin instead of treating it as a failure.
var ErrCacheMiss = errors.New("cache miss")

// CodeOf extracts the AppError code, or "" for infrastructure errors.
func CodeOf(err error) ErrCode {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
