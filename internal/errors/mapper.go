// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Error is a service-level error carrying an HTTP status and a stable
// machine-readable code. State-conflict errors are predeclared so callers
// can distinguish them from generic failures with errors.Is.
type Error struct {
	Status int
	Code   string
	Msg    string
}

func (e *Error) Error() string { return e.Msg }

// Friendship state conflicts.
var (
	ErrSelfRequest      = &Error{http.StatusBadRequest, "self_request", "cannot send a friend request to yourself"}
	ErrAlreadyRequested = &Error{http.StatusConflict, "already_requested", "friend request already sent"}
	ErrAlreadyFriends   = &Error{http.StatusConflict, "already_friends", "users are already friends"}
	ErrNoSuchRequest    = &Error{http.StatusNotFound, "no_such_request", "no pending friend request from this user"}
)

// Review vote conflicts.
var (
	ErrSelfVoteForbidden = &Error{http.StatusBadRequest, "self_vote_forbidden", "cannot vote on your own review"}
)

// Watch-history validation.
var (
	ErrInvalidWatchPayload = &Error{http.StatusBadRequest, "invalid_watch_payload", "missing show metadata or empty episode list"}
)

// Map converts repo/infra errors into service errors with HTTP semantics.
// Keeps the service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{http.StatusNotFound, "not_found", "record not found"}

	case errors.Is(err, context.DeadlineExceeded):
		return &Error{http.StatusGatewayTimeout, "deadline_exceeded", "request timed out"}

	case errors.Is(err, context.Canceled):
		return &Error{http.StatusRequestTimeout, "canceled", "request was canceled"}

	default:
		// unexpected datastore failures surface as a generic retryable failure
		return &Error{http.StatusInternalServerError, "internal", "internal error"}
	}
}

// InvalidArgument creates a 400 error for bad input validation.
func InvalidArgument(msg string) error {
	return &Error{http.StatusBadRequest, "invalid_argument", msg}
}

// NotFound creates a 404 error.
func NotFound(msg string) error {
	return &Error{http.StatusNotFound, "not_found", msg}
}

// Status extracts the HTTP status for an error, defaulting to 500.
func Status(err error) int {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Status
	}
	return http.StatusInternalServerError
}

// Code extracts the machine code for an error, defaulting to "internal".
func Code(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return "internal"
}
