package embedding

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindEmptyInput         ErrorKind = "empty_input"
	KindMissingCredentials ErrorKind = "missing_credentials"
	KindTransport          ErrorKind = "transport"
	KindStatus             ErrorKind = "status"
	KindMalformed          ErrorKind = "malformed_response"
)

var (
	ErrEmptyInput         = &Error{Kind: KindEmptyInput, Message: "cannot embed empty text"}
	ErrMissingCredentials = &Error{Kind: KindMissingCredentials, Message: "embedding api key is not configured"}
)

// Error is returned for every embedding failure.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("embedding %s: %s", e.Kind, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind, so errors.Is(err, ErrEmptyInput) holds for any empty
// input error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Retryable reports whether the same call may succeed later.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTransport:
		return true
	case KindStatus:
		return e.StatusCode == 429 || e.StatusCode >= 500
	default:
		return false
	}
}

// KindOf returns the kind of an embedding error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
