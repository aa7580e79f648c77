package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Action table diagnostics
	ErrCodeEmptyKey          ErrorCode = "EMPTY_KEY"
	ErrCodeDuplicateSequence ErrorCode = "DUPLICATE_SEQUENCE"

	// Application executor errors
	ErrCodeAppNotFound      ErrorCode = "APP_NOT_FOUND"
	ErrCodeNotAnApplication ErrorCode = "NOT_AN_APPLICATION"
	ErrCodeLaunchFailed     ErrorCode = "LAUNCH_FAILED"

	// URL executor errors
	ErrCodeInvalidURL ErrorCode = "INVALID_URL"
	ErrCodeOpenFailed ErrorCode = "OPEN_FAILED"

	// Command execution errors
	ErrCodeCommandTimeout  ErrorCode = "COMMAND_TIMEOUT"
	ErrCodeCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"
	ErrCodeCommandFailed   ErrorCode = "COMMAND_FAILED"

	// Folder executor errors
	ErrCodeFolderNotFound ErrorCode = "FOLDER_NOT_FOUND"
	ErrCodeNotADirectory  ErrorCode = "NOT_A_DIRECTORY"

	// Daemon errors
	ErrCodeDaemonNotRunning ErrorCode = "DAEMON_NOT_RUNNING"
	ErrCodeDaemonRunning    ErrorCode = "DAEMON_RUNNING"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// LeaderError represents a structured error with context
type LeaderError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *LeaderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *LeaderError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *LeaderError) WithDetail(key string, value interface{}) *LeaderError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *LeaderError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new LeaderError
func New(code ErrorCode, message string) *LeaderError {
	return &LeaderError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a LeaderError
func Wrap(err error, code ErrorCode, message string) *LeaderError {
	return &LeaderError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific LeaderError code
func Is(err error, code ErrorCode) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	leaderErr, ok := err.(*LeaderError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return leaderErr.Code
}

// As returns the first LeaderError in err's chain.
func As(err error) (*LeaderError, bool) {
	for err != nil {
		if leaderErr, ok := err.(*LeaderError); ok {
			return leaderErr, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}
