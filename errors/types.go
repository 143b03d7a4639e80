package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG_INVALID"

	// Discovery errors
	ErrCodeWorkspaceUnavailable ErrorCode = "WORKSPACE_UNAVAILABLE"
	ErrCodeSubtreeUnreadable    ErrorCode = "SUBTREE_UNREADABLE"
	ErrCodeSkillNotFound        ErrorCode = "SKILL_NOT_FOUND"

	// Channel errors
	ErrCodeSubscriberEvicted ErrorCode = "SUBSCRIBER_EVICTED"

	// Daemon lifecycle errors
	ErrCodeDaemonAlreadyRunning ErrorCode = "DAEMON_ALREADY_RUNNING"
	ErrCodeDaemonNotRunning     ErrorCode = "DAEMON_NOT_RUNNING"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// DashError represents a structured error with context
type DashError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *DashError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DashError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *DashError) WithDetail(key string, value interface{}) *DashError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *DashError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new DashError
func New(code ErrorCode, message string) *DashError {
	return &DashError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a DashError
func Wrap(err error, code ErrorCode, message string) *DashError {
	return &DashError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error carries a specific error code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	dashErr, ok := err.(*DashError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return dashErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	dashErr, ok := err.(*DashError)
	if !ok {
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return dashErr.Code
}
