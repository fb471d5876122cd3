// Package apperror defines the error kinds every surface maps to a client
// response. None of them are fatal; each can be fixed by resubmitting.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an application error.
type Kind int

const (
	// Internal is any error that is not one of the kinds below.
	Internal Kind = iota
	Forbidden
	NotFound
	Validation
	InvalidState
	Conflict
	Unauthenticated
)

func (k Kind) String() string {
	switch k {
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Validation:
		return "validation_error"
	case InvalidState:
		return "invalid_state"
	case Conflict:
		return "conflict"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "internal"
	}
}

// Error is an error with a Kind. Fields holds per-field messages for
// validation errors.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewForbidden(format string, args ...any) *Error {
	return New(Forbidden, format, args...)
}

func NewNotFound(format string, args ...any) *Error {
	return New(NotFound, format, args...)
}

func NewInvalidState(format string, args ...any) *Error {
	return New(InvalidState, format, args...)
}

func NewConflict(format string, args ...any) *Error {
	return New(Conflict, format, args...)
}

// NewValidation returns a validation error carrying the given field messages.
func NewValidation(fields map[string]string) *Error {
	return &Error{Kind: Validation, Message: "Validation error", Fields: fields}
}

// FieldError is shorthand for a validation error on a single field.
func FieldError(field, msg string) *Error {
	return NewValidation(map[string]string{field: msg})
}

// KindOf returns the Kind of err, or Internal if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err has the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Fields returns the per-field messages of a validation error.
func Fields(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// HTTPStatus maps err to the status code returned to clients.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Forbidden:
		return fiber.StatusForbidden
	case NotFound:
		return fiber.StatusNotFound
	case Validation, InvalidState:
		return fiber.StatusBadRequest
	case Conflict:
		return fiber.StatusConflict
	case Unauthenticated:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}
