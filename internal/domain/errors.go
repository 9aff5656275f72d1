package domain

import (
	"errors"
	"fmt"
)

// Domain errors.
var (
	// ErrInvalidPost is returned when a post cannot be rendered: the thread
	// root is blocked, deleted or missing, or the record is not a post.
	ErrInvalidPost = errors.New("invalid post")

	// ErrMalformedResponse is returned when an AppView response lacks the
	// fields a render needs.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNotFound is returned when the AppView reports the actor or post as not found.
	ErrNotFound = errors.New("not found")

	// ErrNoMedia marks a direct media request whose post has nothing to
	// redirect to. It is logged and the preview is served instead.
	ErrNoMedia = errors.New("no media in post")
)

// FetchError is a non-success response from the AppView.
type FetchError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s: API error (status %d)", e.Op, e.StatusCode)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError.
func NewFetchError(op string, statusCode int, message string, err error) *FetchError {
	return &FetchError{
		Op:         op,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}
