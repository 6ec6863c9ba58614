package lifecycle

import (
	"errors"
	"fmt"
)

// Error kinds raised at the service boundary. Match with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrStorage      = errors.New("storage unavailable")
)

// Error carries one of the kinds above together with a message that is safe
// to show to the caller.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.Kind }

func invalidInput(err error) error {
	return &Error{Kind: ErrInvalidInput, Message: err.Error(), Err: err}
}

func notFound() error {
	return &Error{Kind: ErrNotFound, Message: "No session found with that ID"}
}

func unauthorized() error {
	return &Error{Kind: ErrUnauthorized, Message: "You are not logged in! Please log in to get access."}
}

func storageFailure(op string, err error) error {
	return &Error{Kind: ErrStorage, Message: op + " failed", Err: err}
}

// Message returns the caller-facing text of err, or fallback when err does
// not carry one.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != ErrStorage {
		return e.Message
	}
	return fallback
}

// NewError builds an Error of the given kind for collaborators that raise
// errors at the same boundary.
func NewError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}
