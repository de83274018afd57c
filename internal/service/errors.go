package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/slot_swapper/internal/repository"
	"github.com/google/uuid"
)

// Kind classifies a service error so transports can map it to their own surface.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindForbidden        Kind = "forbidden"
	KindConflict         Kind = "conflict"
	KindInvalidState     Kind = "invalid_state"
	KindInvalidOperation Kind = "invalid_operation"
	KindInternal         Kind = "internal"
)

// Error is returned by every exported service method that fails.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindInternal {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func validationError(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

func notFoundError(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func forbiddenError(format string, args ...any) *Error {
	return newError(KindForbidden, format, args...)
}

func conflictError(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

func invalidStateError(format string, args ...any) *Error {
	return newError(KindInvalidState, format, args...)
}

func invalidOperationError(format string, args ...any) *Error {
	return newError(KindInvalidOperation, format, args...)
}

// storageError classifies a failure coming out of a store or transaction. Errors that already
// carry a Kind pass through untouched.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}

	var se *Error
	if errors.As(err, &se) {
		return err
	}

	switch {
	case repository.IsConflict(err):
		return &Error{Kind: KindConflict, Message: "the data was changed concurrently, try again", Err: err}
	case errors.Is(err, repository.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: "record no longer exists", Err: err}
	default:
		return &Error{Kind: KindInternal, Message: op, Err: err}
	}
}

// KindOf returns the kind of err. Errors that are not *Error count as internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func IsValidation(err error) bool {
	k := KindOf(err)
	return k == KindValidation || k == KindInvalidOperation
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func IsForbidden(err error) bool {
	return KindOf(err) == KindForbidden
}

// IsConflict covers plain conflicts and transitions attempted from the wrong state.
func IsConflict(err error) bool {
	k := KindOf(err)
	return k == KindConflict || k == KindInvalidState
}

func IsInvalidState(err error) bool {
	return KindOf(err) == KindInvalidState
}

func IsInvalidOperation(err error) bool {
	return KindOf(err) == KindInvalidOperation
}

// ParseID turns a raw identifier from a transport into a UUID.
func ParseID(field, raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, validationError("%s is required", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, validationError("%s is not a valid id", field)
	}
	return id, nil
}
