// Package apperr holds the error kinds shared by the store, the services and
// the HTTP layer. Callers classify errors with errors.Is against the kinds.
package apperr

import (
	"errors"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrStorage     = errors.New("storage error")
	ErrMediaDecode = errors.New("media decode error")
)

// Error carries a kind, a client-facing message and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes the kind and the cause. A media decode failure also reports
// itself as a validation failure.
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Kind == ErrMediaDecode {
		errs = append(errs, ErrValidation)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func Validation(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func Conflict(message string, err error) error {
	return &Error{Kind: ErrConflict, Message: message, Err: err}
}

func Storage(message string, err error) error {
	return &Error{Kind: ErrStorage, Message: message, Err: err}
}

func MediaDecode(message string, err error) error {
	return &Error{Kind: ErrMediaDecode, Message: message, Err: err}
}

// Messages used across the API.
const (
	MsgMissingFields   = "Missing required fields (title, content, category)"
	MsgInvalidCategory = "Invalid category"
	MsgInvalidMedia    = "Invalid media type"
	MsgMissingComment  = "Comment content is required"
	MsgMissingReply    = "Reply content is required"
	MsgMissingImage    = "imageData is required"
	MsgInvalidPayload  = "Invalid base64 data URI"
	MsgPostNotFound    = "Post not found"
	MsgCommentNotFound = "Comment not found"
)

// PostNotFound and CommentNotFound are the two not-found cases the API reports.
func PostNotFound() error { return NotFound(MsgPostNotFound) }

func CommentNotFound() error { return NotFound(MsgCommentNotFound) }

// Message returns the client-facing message of err, or its full text when it
// is not an *Error.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
