package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the route layer.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindInvalidArgument
	KindInvalidCredential
	KindUnsupportedFormat
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error is the error type returned by the services. Two errors match under
// errors.Is when their kinds are equal and, if the target carries a reason,
// the reasons are equal too.
type Error struct {
	kind   Kind
	reason string
	entity string
	msg    string
	cause  error
}

// Sentinels for errors.Is.
var (
	ErrNotFound          = &Error{kind: KindNotFound}
	ErrConflict          = &Error{kind: KindConflict}
	ErrDuplicateEmail    = &Error{kind: KindConflict, reason: "duplicate_email"}
	ErrInUse             = &Error{kind: KindConflict, reason: "in_use"}
	ErrInvalidArgument   = &Error{kind: KindInvalidArgument}
	ErrInvalidCredential = &Error{kind: KindInvalidCredential}
	ErrUnsupportedFormat = &Error{kind: KindUnsupportedFormat}
	ErrForbidden         = &Error{kind: KindForbidden}
)

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.msg != "" {
		return e.msg
	}
	if e.reason != "" {
		return e.reason
	}
	return e.kind.String()
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if t.kind != e.kind {
		return false
	}
	return t.reason == "" || t.reason == e.reason
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Kind reports the error kind.
func (e *Error) Kind() Kind {
	if e == nil {
		return KindInternal
	}
	return e.kind
}

// Reason is the optional refinement of the kind (duplicate_email, in_use).
func (e *Error) Reason() string {
	if e == nil {
		return ""
	}
	return e.reason
}

// Entity names the entity type the error is about, if any.
func (e *Error) Entity() string {
	if e == nil {
		return ""
	}
	return e.entity
}

// WithCause attaches the underlying error.
func (e *Error) WithCause(err error) *Error {
	if e == nil {
		return nil
	}
	e.cause = err
	return e
}

func newError(kind Kind, reason, entity, format string, args ...any) *Error {
	return &Error{kind: kind, reason: reason, entity: entity, msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing row, e.g. NotFound("category", "category with id %d not found", 7).
func NotFound(entity, format string, args ...any) *Error {
	return newError(KindNotFound, "", entity, format, args...)
}

// Exists reports a natural key collision.
func Exists(entity, format string, args ...any) *Error {
	return newError(KindConflict, "", entity, format, args...)
}

// DuplicateEmail reports an email already used by another user.
func DuplicateEmail(email string) *Error {
	return newError(KindConflict, "duplicate_email", "user", "email %q is already in use", email)
}

// InUse reports a delete refused because other rows still reference the entity.
func InUse(entity, format string, args ...any) *Error {
	return newError(KindConflict, "in_use", entity, format, args...)
}

func InvalidArgument(format string, args ...any) *Error {
	return newError(KindInvalidArgument, "", "", format, args...)
}

func InvalidCredential(format string, args ...any) *Error {
	return newError(KindInvalidCredential, "", "user", format, args...)
}

func UnsupportedFormat(format string) *Error {
	return newError(KindUnsupportedFormat, "", "image", "unsupported image format: %s", format)
}

func Forbidden(format string, args ...any) *Error {
	return newError(KindForbidden, "", "", format, args...)
}

// As returns the *Error in err's chain, or nil.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}

// KindOf reports the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	if e := As(err); e != nil {
		return e.kind
	}
	return KindInternal
}
