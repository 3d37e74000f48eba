package service

import (
	"errors"
	"fmt"
	"strings"

	"verifyapi/internal/model"
)

// Kind classifies a workflow failure. Every kind except the infrastructure
// case is final: retrying without changing the input cannot succeed.
type Kind string

const (
	KindInvalidInput       Kind = "INVALID_INPUT"
	KindNotFound           Kind = "NOT_FOUND"
	KindInvalidTransition  Kind = "INVALID_TRANSITION"
	KindValidation         Kind = "VALIDATION_ERROR"
	KindConflict           Kind = "CONFLICT"
	KindPreconditionFailed Kind = "PRECONDITION_FAILED"
	KindForbidden          Kind = "FORBIDDEN"
	KindUnauthenticated    Kind = "UNAUTHENTICATED"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrInvalidTransition  = &Error{Kind: KindInvalidTransition}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrConflict           = &Error{Kind: KindConflict}
	ErrPreconditionFailed = &Error{Kind: KindPreconditionFailed}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated}
)

// Error is a typed workflow failure naming the offending entity.
type Error struct {
	Kind    Kind
	Entity  string
	ID      string
	Message string
	// PendingTypes lists the outstanding mandatory types of a gate denial.
	PendingTypes []model.PendingType
	Err          error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Entity != "" {
		b.WriteString(": ")
		b.WriteString(e.Entity)
		if e.ID != "" {
			fmt.Fprintf(&b, " %q", e.ID)
		}
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinels by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of err, or "" for infrastructure failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func invalidInput(entity, id, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Entity: entity, ID: id, Message: fmt.Sprintf(format, args...)}
}

func notFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id, Message: "not found"}
}

// invalidTransition reports a write against a non-PENDING entity. An empty
// from means the state changed between the read and the guarded write.
func invalidTransition(entity, id string, from model.Status) *Error {
	msg := "no longer PENDING"
	if from != "" {
		msg = fmt.Sprintf("is %s, not PENDING", from)
	}
	return &Error{Kind: KindInvalidTransition, Entity: entity, ID: id, Message: msg}
}

func validation(entity, id, msg string) *Error {
	return &Error{Kind: KindValidation, Entity: entity, ID: id, Message: msg}
}

func conflict(entity, id, msg string, cause error) *Error {
	return &Error{Kind: KindConflict, Entity: entity, ID: id, Message: msg, Err: cause}
}

func preconditionFailed(farmID string, pending []model.PendingType) *Error {
	names := make([]string, len(pending))
	for i, p := range pending {
		names[i] = p.Name
	}
	return &Error{
		Kind:         KindPreconditionFailed,
		Entity:       "farm",
		ID:           farmID,
		Message:      "mandatory documents outstanding: " + strings.Join(names, ", "),
		PendingTypes: pending,
	}
}

func forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func unauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Message: "no acting user"}
}
