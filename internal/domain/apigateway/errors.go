package apigateway

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidName  = errors.New("invalid API name: cannot be empty")
	ErrInvalidID    = errors.New("invalid API id: cannot be empty")
	ErrAPINotFound  = errors.New("API not found")
	ErrStageMissing = errors.New("stage not found")
)

// ErrorKind classifies failures crossing the remote-call boundary.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindNotFound
	KindRemoteService
	KindImporter
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindRemoteService:
		return "remote_service"
	case KindImporter:
		return "importer"
	default:
		return "unknown"
	}
}

// Error carries the kind of a failure together with the operation and
// resource it happened on. Output holds captured diagnostics for importer
// failures.
type Error struct {
	Kind     ErrorKind
	Op       string
	Resource string
	Output   string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Resource != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Resource)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", msg, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError wraps err as a malformed-request failure.
func NewValidationError(op string, err error) *Error {
	return &Error{Kind: KindValidation, Op: op, Err: err}
}

// NewNotFoundError reports that resource no longer exists remotely.
func NewNotFoundError(op, resource string, err error) *Error {
	return &Error{Kind: KindNotFound, Op: op, Resource: resource, Err: err}
}

// NewRemoteServiceError wraps any other remote call failure.
func NewRemoteServiceError(op, resource string, err error) *Error {
	return &Error{Kind: KindRemoteService, Op: op, Resource: resource, Err: err}
}

// NewImporterError wraps an importer failure with its captured output.
func NewImporterError(op, output string, err error) *Error {
	return &Error{Kind: KindImporter, Op: op, Output: output, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

func IsImporter(err error) bool {
	return KindOf(err) == KindImporter
}
