package dbrx

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common error conditions.
var (
	// ErrContextNotSet indicates that an operation requiring an execution
	// context was called before one was created or attached.
	ErrContextNotSet = errors.New("dbrx: execution context not set")

	// ErrContextExists indicates that an execution context is already
	// active and must be destroyed before a new one can be created.
	ErrContextExists = errors.New("dbrx: execution context already exists")

	// ErrRInteropDisabled indicates that R execution was requested but the
	// bridging package is not available in the active context.
	ErrRInteropDisabled = errors.New("dbrx: R interop is disabled")

	// ErrCommandFailed indicates a command reached a terminal status other
	// than Finished.
	ErrCommandFailed = errors.New("dbrx: command failed")

	// ErrPackageCheck indicates a package presence probe could not be
	// completed.
	ErrPackageCheck = errors.New("dbrx: package check failed")

	// ErrInstallFailed indicates a package was still missing after an
	// install attempt.
	ErrInstallFailed = errors.New("dbrx: package install failed")

	// ErrUnexpectedResponse indicates the service answered with a shape
	// this client cannot interpret.
	ErrUnexpectedResponse = errors.New("dbrx: unexpected response")

	// ErrTimeout indicates that a submit/poll cycle timed out.
	ErrTimeout = errors.New("dbrx: execution timeout")

	// ErrRequestTimeout indicates that a single HTTP request timed out.
	ErrRequestTimeout = errors.New("dbrx: request timeout")

	// ErrNotFound indicates that a resource was not found.
	ErrNotFound = errors.New("dbrx: resource not found")

	// ErrAuthentication indicates the bearer token was rejected.
	ErrAuthentication = errors.New("dbrx: authentication failed")

	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("dbrx: invalid argument")
)

// APIError represents a non-2xx response from the control plane.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Endpoint is the API path that produced the error.
	Endpoint string

	// Message is the response body, verbatim.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("api error status %d on %s, %s: %v", e.StatusCode, e.Endpoint, e.Message, e.Err)
	}
	return fmt.Sprintf("api error status %d on %s, %s", e.StatusCode, e.Endpoint, e.Message)
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == 404
	case ErrAuthentication:
		return e.StatusCode == 401 || e.StatusCode == 403
	}
	return false
}

// CommandFailedError is returned when a command reaches a terminal status
// other than Finished, for example Cancelled or Error.
type CommandFailedError struct {
	// CommandID is the run identifier assigned at submission.
	CommandID string

	// Status is the terminal status the command reached.
	Status CommandStatus

	// Results holds whatever results the final status payload carried.
	Results *CommandResults
}

// Error implements the error interface.
func (e *CommandFailedError) Error() string {
	if e.Results != nil && e.Results.Summary != "" {
		return fmt.Sprintf("command %s ended with status %s: %s", e.CommandID, e.Status, e.Results.Summary)
	}
	return fmt.Sprintf("command %s ended with status %s", e.CommandID, e.Status)
}

// Is checks if the error matches the target.
func (e *CommandFailedError) Is(target error) bool {
	return target == ErrCommandFailed
}

// PackageCheckError is returned when a package presence probe produces an
// error-typed result in the remote interpreter.
type PackageCheckError struct {
	// Package is the package that was probed.
	Package string

	// Kind is the package ecosystem that was probed.
	Kind PackageKind

	// Summary is the short error description reported by the service.
	Summary string

	// Cause is the full error cause reported by the service.
	Cause string
}

// Error implements the error interface.
func (e *PackageCheckError) Error() string {
	if e.Summary != "" {
		return fmt.Sprintf("package check for %s package %q failed: %s", e.Kind, e.Package, e.Summary)
	}
	return fmt.Sprintf("package check for %s package %q failed", e.Kind, e.Package)
}

// Is checks if the error matches the target.
func (e *PackageCheckError) Is(target error) bool {
	return target == ErrPackageCheck
}

// TimeoutError represents a timeout error with additional context.
type TimeoutError struct {
	// Type indicates whether it's an execution or request timeout.
	Type string

	// Duration is the timeout duration that was exceeded.
	Duration string
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	if e.Duration != "" {
		return fmt.Sprintf("%s timeout exceeded after %s", e.Type, e.Duration)
	}
	return fmt.Sprintf("%s timeout exceeded", e.Type)
}

// Is checks if the error matches the target.
func (e *TimeoutError) Is(target error) bool {
	switch e.Type {
	case "execution":
		return target == ErrTimeout
	case "request":
		return target == ErrRequestTimeout
	default:
		return false
	}
}

// NewExecutionTimeoutError creates a new execution timeout error.
func NewExecutionTimeoutError(d time.Duration) *TimeoutError {
	return &TimeoutError{
		Type:     "execution",
		Duration: d.String(),
	}
}

// NewRequestTimeoutError creates a new request timeout error.
func NewRequestTimeoutError(d time.Duration) *TimeoutError {
	return &TimeoutError{
		Type:     "request",
		Duration: d.String(),
	}
}

// formatHTTPError converts a non-2xx HTTP response to an appropriate error.
func formatHTTPError(statusCode int, endpoint, body string) error {
	switch statusCode {
	case 401, 403:
		return &APIError{
			StatusCode: statusCode,
			Endpoint:   endpoint,
			Message:    body,
			Err:        ErrAuthentication,
		}
	case 404:
		return &APIError{
			StatusCode: statusCode,
			Endpoint:   endpoint,
			Message:    body,
			Err:        ErrNotFound,
		}
	default:
		return &APIError{
			StatusCode: statusCode,
			Endpoint:   endpoint,
			Message:    body,
		}
	}
}
