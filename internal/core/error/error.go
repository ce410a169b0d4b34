package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing key in Redis.
	RedisNotFoundMessage = "record not found"
)

// Sentinel errors for the service failure taxonomy. Handlers and the agent
// service branch on these with errors.Is.
var (
	// ErrNotFound signals an unknown conversation, account, facility or note.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument signals malformed or missing tool/request input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStorageUnavailable signals that the persistence layer is down.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrUpstreamReasoning signals that the external reasoning call failed.
	ErrUpstreamReasoning = errors.New("upstream reasoning failure")
	// ErrToolExecution signals that a requested tool call failed mid-turn.
	ErrToolExecution = errors.New("tool execution failure")
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// NotFound builds a 404 AppError chained to ErrNotFound.
func NotFound(message string) *AppError {
	return New(ErrNotFound, http.StatusNotFound, message)
}

// InvalidArgument builds a 400 AppError chained to ErrInvalidArgument.
func InvalidArgument(message string) *AppError {
	return New(ErrInvalidArgument, http.StatusBadRequest, message)
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}

// StatusOf extracts the HTTP status carried by err, falling back to 500.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
