package common

import (
	"fmt"

	errors "github.com/Laisky/errors/v2"
)

// Repository-level errors.
var (
	ErrNotFound = errors.New("not found")

	ErrUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Kind groups errors into the classes transports translate into status codes.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindPolicy
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPolicy:
		return "policy"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a typed web-service error. Code is machine stable and matches the
// error codes Moodle web-service clients already know.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return "ws error: <nil>"
	}
	if e.Message == "" {
		return fmt.Sprintf("%s error: %s", e.Kind, e.Code)
	}
	return e.Message
}

// Is matches errors of the same kind and code, so wrapped copies created with
// a different message still compare equal to the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// NewError constructs a typed error.
func NewError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func ValidationError(code, message string) *Error {
	return NewError(KindValidation, code, message)
}

func PolicyError(code, message string) *Error {
	return NewError(KindPolicy, code, message)
}

func ConflictError(code, message string) *Error {
	return NewError(KindConflict, code, message)
}

func NotFoundError(code, message string) *Error {
	return NewError(KindNotFound, code, message)
}

// Sentinels for every failure the upload endpoint reports.
var (
	ErrNoFile            = ValidationError("nofile", "no file")
	ErrInvalidParameter  = ValidationError("invalidparameter", "invalid parameter value detected")
	ErrMaxBytes          = ValidationError("maxbytes", "file is too large")
	ErrDraftOnly         = PolicyError("draftonly", "upload restricted to draft area")
	ErrPrivateUpload     = PolicyError("privatefilesupload", "private area upload forbidden")
	ErrNoPermissions     = PolicyError("nopermissions", "sorry, but you do not currently have permissions to do that")
	ErrRequireLogin      = PolicyError("requireloginerror", "user is not allowed to act in this context")
	ErrFileExists        = ConflictError("fileexist", "file exists")
	ErrResourceBusy      = ConflictError("resourcebusy", "course image update in progress")
	ErrCourseNotFound    = NotFoundError("invalidcourseid", "course not found")
	ErrContextNotFound   = NotFoundError("invalidcontext", "context not found")
	ErrDraftFileNotFound = NotFoundError("nofile", "draft file not found")
)

// AsError extracts a typed error from the chain.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}

// KindOf reports the kind of err; untyped errors are internal.
func KindOf(err error) Kind {
	if typed, ok := AsError(err); ok {
		return typed.Kind
	}
	return KindInternal
}

// IsKind reports whether the error chain contains a typed error of kind.
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// WithMessage returns a copy of a sentinel with a more specific message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}
