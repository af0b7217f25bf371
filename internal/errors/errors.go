package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// TaskNotFound indicates an update targeted an id that does not exist
	TaskNotFound ErrorCode = "TASK_NOT_FOUND"
	// InvalidInput indicates a form was rejected before reaching the repository
	InvalidInput ErrorCode = "INVALID_INPUT"
	// InvalidDate indicates a date argument could not be parsed
	InvalidDate ErrorCode = "INVALID_DATE"
	// StorageFailure indicates the store could not be opened, read or written
	StorageFailure ErrorCode = "STORAGE_FAILURE"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// EditConfig suggests changing a configuration value
	EditConfig FixActionType = "edit-config"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	Setting     string        `json:"setting,omitempty"`
}

// PlannerError represents a planner error with code, message, and suggestions
type PlannerError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a PlannerError with the default suggested fixes for code
func New(code ErrorCode, message string, cause error) *PlannerError {
	return &PlannerError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Error implements the error interface
func (e *PlannerError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *PlannerError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *PlannerError) WithDetails(details interface{}) *PlannerError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first PlannerError in err's chain, or
// InternalError if there is none.
func CodeOf(err error) ErrorCode {
	var pe *PlannerError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return InternalError
}

// ExitCode maps an error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch CodeOf(err) {
	case InvalidInput, InvalidDate:
		return 2
	case TaskNotFound:
		return 3
	case StorageFailure:
		return 4
	case ConfigInvalid:
		return 5
	default:
		return 1
	}
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	TaskNotFound: {
		{
			Type:        RunCommand,
			Command:     "planner show --all",
			Safe:        true,
			Description: "List tasks to find a valid id",
		},
	},
	InvalidDate: {
		{
			Type:        RunCommand,
			Command:     "planner show --date 2024-06-15",
			Safe:        true,
			Description: "Dates use the YYYY-MM-DD format",
		},
	},
	StorageFailure: {
		{
			Type:        RunCommand,
			Command:     "planner config show",
			Safe:        true,
			Description: "Check the storage backend and path",
		},
	},
	ConfigInvalid: {
		{
			Type:        EditConfig,
			Setting:     "storage.backend",
			Description: "Use one of sqlite, badger, memory",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
