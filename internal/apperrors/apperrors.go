// Package apperrors defines the error taxonomy shared by the matching engine, its stores and the API.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/go-errors/errors"
)

// ErrorType classifies a DomainError
type ErrorType string

// Error categories. Inference categories are recovered inside a run and never reach callers.
const (
	ErrTypeValidation           ErrorType = "VALIDATION"            // malformed or missing input
	ErrTypeNotFound             ErrorType = "NOT_FOUND"             // the job does not exist
	ErrTypeStoreUnavailable     ErrorType = "STORE_UNAVAILABLE"     // a backing store failed
	ErrTypeInferenceUnavailable ErrorType = "INFERENCE_UNAVAILABLE" // the ML endpoint is not serving
	ErrTypeInferenceInvocation  ErrorType = "INFERENCE_INVOCATION"  // one prediction failed
	ErrTypePersistence          ErrorType = "PERSISTENCE"           // the match run could not be saved
	ErrTypeInternal             ErrorType = "INTERNAL"              // anything unclassified
)

// DomainError carries a category, a message, the wrapped cause and the stack where it was raised
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

// Error formats the category, message and cause
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the cause
func (e *DomainError) Unwrap() error {
	return e.Err
}

// StackTrace returns the captured stack
func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

// New builds a DomainError, reusing the cause's stack when it already has one.
func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		var stackErr *goerrors.Error
		if errors.As(err, &stackErr) {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

// Validation reports bad input
func Validation(message string, err error) *DomainError {
	return New(ErrTypeValidation, message, err)
}

// NotFound reports a missing job or record
func NotFound(message string, err error) *DomainError {
	return New(ErrTypeNotFound, message, err)
}

// StoreUnavailable reports a failed or unreachable store
func StoreUnavailable(message string, err error) *DomainError {
	return New(ErrTypeStoreUnavailable, message, err)
}

// InferenceUnavailable reports an ML endpoint that is not serving
func InferenceUnavailable(message string, err error) *DomainError {
	return New(ErrTypeInferenceUnavailable, message, err)
}

// InferenceInvocation reports a failed prediction for one candidate
func InferenceInvocation(message string, err error) *DomainError {
	return New(ErrTypeInferenceInvocation, message, err)
}

// Persistence reports a match run that could not be saved
func Persistence(message string, err error) *DomainError {
	return New(ErrTypePersistence, message, err)
}

// Internal reports an unclassified failure
func Internal(message string, err error) *DomainError {
	return New(ErrTypeInternal, message, err)
}

// TypeOf returns the category of the first DomainError in err's chain, or ErrTypeInternal.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ErrTypeInternal
}

// Is reports whether err carries the given category.
func Is(err error, errType ErrorType) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Type == errType
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch TypeOf(err) {
	case ErrTypeValidation:
		return http.StatusBadRequest
	case ErrTypeNotFound:
		return http.StatusNotFound
	case ErrTypeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
