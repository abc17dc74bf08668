package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/classroom-seating/internal/store"
)

// FieldError names one invalid input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError reports input rejected before any mutation.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

// invalid is shorthand for a single-field validation error.
func invalid(field, msg string) error {
	return NewValidationError(fmt.Errorf("%s: %s", field, msg), FieldError{Field: field, Error: msg})
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Error)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Conflict reasons.
const (
	ReasonNotPending      = "not_pending"
	ReasonNotEditable     = "not_editable"
	ReasonAlreadyRestored = "already_restored"
	ReasonNotFound        = "not_found"
	ReasonStaleRevision   = "stale_revision"
	ReasonRoomInUse       = "room_in_use"
)

// ConflictError is a precondition failure against the current state.  It
// matches store.ErrConflict with errors.Is.
type ConflictError struct {
	Reason  string
	Message string
}

func conflict(reason, format string, args ...any) error {
	return &ConflictError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Is(target error) bool { return target == store.ErrConflict }

// ErrForbidden is returned when the actor's role or ownership does not
// allow the operation.
var ErrForbidden = store.ErrForbidden

// revisionConflict turns a stale write into a ConflictError and passes
// anything else through.
func revisionConflict(err error, subRoomID uint64) error {
	if errors.Is(err, store.ErrStaleRevision) {
		return &ConflictError{
			Reason:  ReasonStaleRevision,
			Message: fmt.Sprintf("sub-room %d was saved by someone else; reload and retry", subRoomID),
		}
	}
	return err
}
