package core

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
)

// Kind classifies an AppError. The set is closed; every switch over Kind in
// this module is exhaustive.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindDatabase
	KindBusinessLogic
)

// Status returns the HTTP status code fixed for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindDatabase:
		return http.StatusInternalServerError
	case KindBusinessLogic:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Code is a short reference users can quote to support.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "VAL001"
	case KindUnauthorized:
		return "AUTH001"
	case KindForbidden:
		return "AUTH002"
	case KindNotFound:
		return "NF001"
	case KindConflict:
		return "CONF001"
	case KindDatabase:
		return "DB000"
	case KindBusinessLogic:
		return "BIZ001"
	default:
		return "ERR000"
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindDatabase:
		return "database"
	case KindBusinessLogic:
		return "business logic"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// genericDatabaseMessage is shown for database failures unless the caller
// supplies something more specific. Driver text never reaches users.
const genericDatabaseMessage = "A database error occurred. Please try again later."

// AppError is a failure that knows how it should be presented: an HTTP status
// fixed by Kind, a diagnostic message for logs and a message that is safe to
// show to users.
type AppError struct {
	Kind     Kind
	Internal string              // diagnostic text, logs only
	User     string              // safe for display
	Fields   map[string][]string // per-field messages, validation only
	Cause    error
}

func newAppError(kind Kind, internal string, cause error, user []string) *AppError {
	if internal == "" {
		internal = "unspecified " + kind.String() + " error"
	}

	e := &AppError{Kind: kind, Internal: internal, Cause: cause}
	if len(user) > 0 && user[0] != "" {
		e.User = user[0]
	} else if kind == KindDatabase {
		e.User = genericDatabaseMessage
	} else {
		e.User = internal
	}
	return e
}

// Validation reports invalid input. fields maps a form field to its messages.
func Validation(internal string, fields map[string][]string, user ...string) *AppError {
	e := newAppError(KindValidation, internal, nil, user)
	e.Fields = cloneFields(fields)
	return e
}

// Unauthorized reports a missing or failed login.
func Unauthorized(internal string, user ...string) *AppError {
	return newAppError(KindUnauthorized, internal, nil, user)
}

// Forbidden reports an authenticated caller lacking permission.
func Forbidden(internal string, user ...string) *AppError {
	return newAppError(KindForbidden, internal, nil, user)
}

// NotFound reports a missing resource.
func NotFound(internal string, user ...string) *AppError {
	return newAppError(KindNotFound, internal, nil, user)
}

// Conflict reports a clash with existing state, such as a duplicate record.
func Conflict(internal string, user ...string) *AppError {
	return newAppError(KindConflict, internal, nil, user)
}

// Database reports a storage failure. Without an explicit user message a
// generic one is used so driver details stay in the logs.
func Database(internal string, cause error, user ...string) *AppError {
	return newAppError(KindDatabase, internal, cause, user)
}

// BusinessLogic reports a request that is well formed but not allowed.
func BusinessLogic(internal string, user ...string) *AppError {
	return newAppError(KindBusinessLogic, internal, nil, user)
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Internal + ": " + e.Cause.Error()
	}
	return e.Internal
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Status returns the HTTP status code for the error's kind.
func (e *AppError) Status() int {
	return e.Kind.Status()
}

// UserMessage returns the text that may be shown to users.
func (e *AppError) UserMessage() string {
	return e.User
}

// FieldErrors returns a copy of the per-field messages.
func (e *AppError) FieldErrors() map[string][]string {
	return cloneFields(e.Fields)
}

// WithCause returns a copy of e that wraps cause.
func (e *AppError) WithCause(cause error) *AppError {
	c := *e
	c.Fields = cloneFields(e.Fields)
	c.Cause = cause
	return &c
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err's chain holds an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Kind == kind
}

func cloneFields(fields map[string][]string) map[string][]string {
	if fields == nil {
		return nil
	}
	out := make(map[string][]string, len(fields))
	for k, v := range fields {
		out[k] = slices.Clone(v)
	}
	return out
}
