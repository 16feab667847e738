package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error so handlers can map it to an HTTP status
// without inspecting message strings.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	KindState
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindState:
		return "invalid_state"
	default:
		return "internal"
	}
}

// Error carries a kind plus a human-readable message. Wrapped causes are
// preserved for errors.Is/As.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, msg string, err error) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func Validation(msg string) error   { return New(KindValidation, msg) }
func Conflict(msg string) error     { return New(KindConflict, msg) }
func NotFound(msg string) error     { return New(KindNotFound, msg) }
func Unauthorized(msg string) error { return New(KindUnauthorized, msg) }
func State(msg string) error        { return New(KindState, msg) }

// KindOf returns the kind of err, or KindInternal for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool { return err != nil && KindOf(err) == kind }
