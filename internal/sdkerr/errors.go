// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package sdkerr defines the error taxonomy shared by the credential codec,
// the HTTP gateway and the archive resource.
package sdkerr

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrSessionNotFound   = errors.New("session not found")
	ErrRequestFailed     = errors.New("request failed")
	ErrMalformedResponse = errors.New("malformed response")
)

// Error is the rich error type wrapping one of the sentinel kinds with context.
type Error struct {
	Kind    error // one of the Err* sentinels
	Sub     Sub   // RequestFailed only
	Op      Op
	Status  int
	Message string
	Err     error // Nested lower-level error (e.g. *url.Error)
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("opentok: %v", e.Kind)
	if e.Op != "" {
		msg = fmt.Sprintf("opentok: %s: %v", e.Op, e.Kind)
	}
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil && (e.Message == "" || e.Message != e.Err.Error()) {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the kind, the sub-kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Sub != "" {
		errs = append(errs, e.Sub)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// InvalidArgument reports bad caller input detected locally.
func InvalidArgument(op Op, format string, args ...any) *Error {
	return &Error{Kind: ErrInvalidArgument, Op: op, Message: fmt.Sprintf(format, args...)}
}

// SessionNotFound reports a session id that fails codec validation.
func SessionNotFound(op Op, cause error) *Error {
	return &Error{Kind: ErrSessionNotFound, Op: op, Message: "Session not found", Err: cause}
}

// RequestFailed reports a non-2xx provider status or a transport failure.
func RequestFailed(status int, message string, cause error) *Error {
	return &Error{Kind: ErrRequestFailed, Status: status, Message: message, Err: cause}
}

// MalformedResponse reports a provider payload that does not match the expected schema.
func MalformedResponse(op Op, cause error) *Error {
	return &Error{Kind: ErrMalformedResponse, Op: op, Message: "Exception mapping response", Err: cause}
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// SubOf returns the RequestFailed sub-kind carried by err, or "".
func SubOf(err error) Sub {
	var e *Error
	if errors.As(err, &e) {
		return e.Sub
	}
	return ""
}
