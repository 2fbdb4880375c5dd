package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrBadRequest       = errors.New("bad request")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Safety errors. Any of these aborts the run before the store is touched.
var (
	ErrSafetyViolation      = errors.New("safety violation")
	ErrBlacklistedTarget    = errors.New("target matches the production blacklist")
	ErrInvalidEnvironment   = errors.New("environment flag is not an allowed non-production value")
	ErrConnectivity         = errors.New("store connectivity check failed")
	ErrConfirmationRejected = errors.New("destructive operation was not confirmed")
	ErrInvalidServiceKey    = errors.New("service key is not usable for this target")
)

// Generation errors
var (
	ErrMissingDependency = errors.New("missing dependency")
	ErrBatchInsert       = errors.New("batch insert failed")
	ErrEmptyChoices      = errors.New("cannot choose from an empty list")
	ErrUnexpectedRow     = errors.New("store returned an unexpected row")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewInvalidConfigError reports a configuration value that cannot be used
func NewInvalidConfigError(message string) error {
	return &CustomError{
		Err:     ErrInvalidConfig,
		Message: message,
		Code:    "INVALID_CONFIG",
	}
}

// NewSafetyError wraps one of the safety sentinels. The result matches both
// ErrSafetyViolation and the given cause.
func NewSafetyError(cause error, message string) *CustomError {
	return &CustomError{
		Err:     errors.Join(ErrSafetyViolation, cause),
		Message: fmt.Sprintf("safety check failed: %s", message),
		Code:    "SAFETY_VIOLATION",
	}
}

// NewMissingDependencyError names the predecessor output a phase needed but did not get
func NewMissingDependencyError(phase, dependency string) *CustomError {
	return &CustomError{
		Err:     ErrMissingDependency,
		Message: fmt.Sprintf("%s phase requires %s from a previous phase", phase, dependency),
		Code:    "MISSING_DEPENDENCY",
		Details: map[string]interface{}{"phase": phase, "dependency": dependency},
	}
}

// NewBatchInsertError reports a chunk that did not land. inserted is the number
// of rows written by earlier chunks of the same call.
func NewBatchInsertError(table string, chunk, inserted int, cause error) *CustomError {
	return &CustomError{
		Err:     errors.Join(ErrBatchInsert, cause),
		Message: fmt.Sprintf("batch insert into %s failed at chunk %d: %v", table, chunk, cause),
		Code:    "BATCH_INSERT_FAILED",
		Details: map[string]interface{}{"table": table, "chunk": chunk, "inserted_before_failure": inserted},
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}
