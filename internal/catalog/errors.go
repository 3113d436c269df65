package catalog

import (
	"errors"
	"fmt"
)

// Kind classifies a catalog failure. The HTTP layer maps kinds to status codes.
type Kind int

const (
	Unknown Kind = iota
	BadRequest
	Forbidden
	Conflict
	NotFound
	StoreFailure
)

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "bad request"
	case Forbidden:
		return "forbidden"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not found"
	case StoreFailure:
		return "store failure"
	default:
		return "unknown"
	}
}

// GenericMessage is reported for failures that must not leak internals.
const GenericMessage = "something went wrong"

// Error is a failure with a kind and a caller-facing message. Err holds the
// underlying cause, if any, and is never shown to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Unknown && e.Message != "" {
		return e.Message
	}
	return GenericMessage
}

func badRequest(msg string) error {
	return &Error{Kind: BadRequest, Message: msg}
}

func forbidden(msg string) error {
	return &Error{Kind: Forbidden, Message: msg}
}

func conflict(msg string) error {
	return &Error{Kind: Conflict, Message: msg}
}

func notFound(msg string) error {
	return &Error{Kind: NotFound, Message: msg}
}

func storeFailure(msg string, err error) error {
	return &Error{Kind: StoreFailure, Message: msg, Err: err}
}
