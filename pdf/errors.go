package pdf

import (
	"context"
	"errors"

	errorslib "github.com/goliatone/go-errors"
)

// ErrorKind defines document error kinds.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindConfigMissing ErrorKind = "config_missing"
	KindNotFound      ErrorKind = "not_found"
	KindTimeout       ErrorKind = "timeout"
	KindCanceled      ErrorKind = "canceled"
	KindInternal      ErrorKind = "internal"
	KindNotImpl       ErrorKind = "not_implemented"
)

// Error wraps errors with a kind.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new document error.
func NewError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// AsGoError maps an error into a go-errors error.
func AsGoError(err error) *errorslib.Error {
	if err == nil {
		return nil
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge
	}

	kind := KindInternal
	msg := err.Error()

	var docErr *Error
	if errors.As(err, &docErr) {
		kind = docErr.Kind
		if docErr.Msg != "" {
			msg = docErr.Msg
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		kind = KindCanceled
	}

	switch kind {
	case KindValidation:
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("validation")
	case KindConfigMissing:
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("config_missing")
	case KindNotFound:
		return errorslib.New(msg, errorslib.CategoryNotFound).WithTextCode("not_found")
	case KindTimeout:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("timeout")
	case KindCanceled:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("canceled")
	case KindNotImpl:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("not_implemented")
	default:
		return errorslib.New(msg, errorslib.CategoryInternal).WithTextCode("internal")
	}
}

// KindFromError maps an error to its document error kind.
func KindFromError(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var docErr *Error
	if errors.As(err, &docErr) {
		return docErr.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	return KindInternal
}
