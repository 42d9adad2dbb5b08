package errors

import (
	stderrors "errors"
	"fmt"

	"campushub/domain/event"
)

var (
	// ErrAuthentication rejects a connection attempt outright. It never
	// reaches a handler; the gate runs before any of them.
	ErrAuthentication = fmt.Errorf("authentication failed")
	// ErrAccessDenied covers a valid identity lacking rights for the target
	// conversation, organization, or administrative action.
	ErrAccessDenied = fmt.Errorf("access denied")
	ErrValidation   = fmt.Errorf("validation failed")
	// ErrNotFound also stands in when a record belongs to another
	// organization, so existence is never leaked by the error shape.
	ErrNotFound    = fmt.Errorf("not found")
	ErrPersistence = fmt.Errorf("persistence failed")
	// ErrDelivery marks a partial fanout failure after a successful persist.
	// It is logged, never surfaced to the sender.
	ErrDelivery    = fmt.Errorf("delivery failed")
	ErrWorkerPanic = fmt.Errorf("worker panic")
	ErrEmptyWords  = fmt.Errorf("no censored words have been found")
)

// Wire codes are stable identifiers for the error event payload.
const (
	CodeAccessDenied = "access_denied"
	CodeValidation   = "validation_error"
	CodeNotFound     = "not_found"
	CodeInternal     = "internal_error"
)

// MapToWire converts any operation error into the error event sent back to
// the originating connection. Store internals and other users' record
// existence must never leak, so everything unrecognized collapses into a
// generic internal code.
func MapToWire(err error) event.Error {
	switch {
	case stderrors.Is(err, ErrAccessDenied):
		return event.Error{Code: CodeAccessDenied, Message: "access denied"}
	case stderrors.Is(err, ErrValidation):
		return event.Error{Code: CodeValidation, Message: "invalid request"}
	case stderrors.Is(err, ErrNotFound):
		return event.Error{Code: CodeNotFound, Message: "resource not found"}
	default:
		return event.Error{Code: CodeInternal, Message: "operation failed"}
	}
}
