package domain

import (
	"errors"
	"fmt"
	"strings"
)

type ErrorKind string

const (
	KindNotFound               ErrorKind = "not_found"
	KindInvalidStateTransition ErrorKind = "invalid_state_transition"
	KindInvalidOperation       ErrorKind = "invalid_operation"
	KindValidationFailed       ErrorKind = "validation_failed"
	KindConflict               ErrorKind = "conflict"
)

// Error is the typed error returned by the store and the services. Details
// carries every individual message of a ValidationFailed error.
type Error struct {
	Kind    ErrorKind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if len(e.Details) > 0 {
		msg = msg + ": " + strings.Join(e.Details, "; ")
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Expected marks domain errors as rejected requests rather than faults.
func (e *Error) Expected() bool { return true }

// Is matches on kind. A target carrying a message must also match it, which
// lets sentinels such as ErrAlreadyReturned be told apart from other
// InvalidOperation errors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

var (
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrInvalidStateTransition = &Error{Kind: KindInvalidStateTransition}
	ErrInvalidOperation       = &Error{Kind: KindInvalidOperation}
	ErrValidationFailed       = &Error{Kind: KindValidationFailed}
	ErrConflict               = &Error{Kind: KindConflict}

	ErrAlreadyReturned    = &Error{Kind: KindInvalidOperation, Message: "book already returned"}
	ErrFineAlreadyPaid    = &Error{Kind: KindInvalidOperation, Message: "fine already paid"}
	ErrNoCopiesAvailable  = &Error{Kind: KindInvalidOperation, Message: "no available copies to borrow"}
	ErrAllCopiesAvailable = &Error{Kind: KindInvalidOperation, Message: "all copies are already available"}
)

func NotFound(entity string, id int32) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %d", entity, id)}
}

func InvalidTransition(entity string, from, to any) *Error {
	return &Error{
		Kind:    KindInvalidStateTransition,
		Message: fmt.Sprintf("invalid %s status transition from %v to %v", entity, from, to),
	}
}

func InvalidOperation(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidOperation, Message: fmt.Sprintf(format, args...)}
}

func ValidationFailed(details []string) *Error {
	return &Error{Kind: KindValidationFailed, Message: "validation failed", Details: details}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}
