package handler

import (
	"fmt"

	"github.com/pkg/errors"
)

// An ErrorCode is reported on FAILED events. The set is closed.
type ErrorCode string

// Error codes.
const (
	NotFound                ErrorCode = "NotFound"
	ServiceInternalError    ErrorCode = "ServiceInternalError"
	Throttling              ErrorCode = "Throttling"
	InvalidRequest          ErrorCode = "InvalidRequest"
	AccessDenied            ErrorCode = "AccessDenied"
	GeneralServiceException ErrorCode = "GeneralServiceException"
)

// Retryable returns true if the caller may retry the operation as is.
func (c ErrorCode) Retryable() bool {
	return c == Throttling || c == ServiceInternalError
}

// A Kind classifies a remote failure independently of the remote service's
// own error types.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	KindNotFound
	KindInternal
	KindThrottling
	KindInvalid
	KindAccessDenied
	KindAlreadyExists
	KindConflict
	KindLimitExceeded
)

var kindNames = map[Kind]string{
	KindUnknown:       "unknown",
	KindNotFound:      "not-found",
	KindInternal:      "internal",
	KindThrottling:    "throttling",
	KindInvalid:       "invalid",
	KindAccessDenied:  "access-denied",
	KindAlreadyExists: "already-exists",
	KindConflict:      "conflict",
	KindLimitExceeded: "limit-exceeded",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// An Operation describes the remote call that failed.
type Operation struct {
	TypeName   string // Resource type name, AWS::SageMaker::Pipeline.
	Identifier string // Identifier of the resource the call was made for.
	API        string // Remote API name, DescribePipeline.
	Message    string // Error message supplied by the remote service.
}

// An Error is a failure reported to the orchestrator.
type Error struct {
	Code    ErrorCode
	Message string
	Kind    Kind
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf creates a new Error with a formatted message.
func Errorf(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Translate maps an error kind for a failed operation to the error reported
// to the orchestrator.
//
// Every kind maps to exactly one code; unknown kinds map to
// GeneralServiceException.
func Translate(kind Kind, op Operation) *Error {
	e := &Error{Kind: kind}
	switch kind {
	case KindNotFound:
		e.Code = NotFound
		e.Message = fmt.Sprintf("Resource of type '%s' with identifier '%s' was not found.", op.TypeName, op.Identifier)
	case KindInternal:
		e.Code = ServiceInternalError
		e.Message = fmt.Sprintf("Internal error reported from downstream service during operation '%s'.", op.Message)
	case KindThrottling:
		e.Code = Throttling
		e.Message = fmt.Sprintf("Rate exceeded for operation '%s'.", op.API)
	case KindInvalid:
		e.Code = InvalidRequest
		e.Message = fmt.Sprintf("Invalid request provided: %s", op.Message)
	case KindAccessDenied:
		e.Code = AccessDenied
		e.Message = fmt.Sprintf("Access denied for operation '%s'.", op.API)
	case KindAlreadyExists:
		e.Code = InvalidRequest
		e.Message = fmt.Sprintf("Resource of type '%s' with identifier '%s' already exists.", op.TypeName, op.Identifier)
	case KindConflict:
		e.Code = InvalidRequest
		e.Message = fmt.Sprintf("Resource of type '%s' with identifier '%s' is in use: %s", op.TypeName, op.Identifier, op.Message)
	case KindLimitExceeded:
		e.Code = InvalidRequest
		e.Message = fmt.Sprintf("Limit exceeded for resource of type '%s'. Reason: %s", op.TypeName, op.Message)
	default:
		e.Kind = KindUnknown
		e.Code = GeneralServiceException
		e.Message = fmt.Sprintf("Error occurred during operation '%s'.", op.API)
		if op.Message != "" {
			e.Message += " Reason: " + op.Message
		}
	}
	return e
}

// AsError returns err as an *Error. Any other error is translated as an
// unknown failure.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Translate(KindUnknown, Operation{API: "handler", Message: err.Error()})
}
