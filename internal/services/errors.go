package services

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Internal Kind = iota
	Unauthorized
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Unauthorized:
		return "unauthorized"
	case Conflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is the tagged failure returned by AuthService. Message is safe to
// show callers; Err carries the cause for operators only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

var (
	ErrBadCreds   = &Error{Kind: Unauthorized, Message: "Invalid email or password"}
	ErrEmailTaken = &Error{Kind: Conflict, Message: "Email already exists"}
)

const (
	msgLoginFailed    = "Something went wrong"
	msgRegisterFailed = "Error registering user"
)

func internal(msg string, cause error) *Error {
	return &Error{Kind: Internal, Message: msg, Err: cause}
}

// Classify returns the kind of err and the message callers may see.
// Anything that is not an *Error is Internal with a generic message.
func Classify(err error) (Kind, string) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, e.Message
	}
	return Internal, msgLoginFailed
}
