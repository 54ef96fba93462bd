package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// NotARepository indicates the working directory is not inside a git repository
	NotARepository ErrorCode = "NOT_A_REPOSITORY"
	// VcsCommandFailed indicates the git subprocess failed
	VcsCommandFailed ErrorCode = "VCS_COMMAND_FAILED"
	// ContentUnavailable indicates file content at a revision could not be read
	ContentUnavailable ErrorCode = "CONTENT_UNAVAILABLE"
	// Timeout indicates a git command exceeded its deadline
	Timeout ErrorCode = "TIMEOUT"
	// InvalidArgument indicates a caller supplied an unusable file path or line
	InvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// OwnerError represents a lineowner error with code, message, and suggestions
type OwnerError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// NewOwnerError creates a new OwnerError
func NewOwnerError(code ErrorCode, message string, cause error, suggestedFixes []FixAction) *OwnerError {
	return &OwnerError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: suggestedFixes,
	}
}

// Error implements the error interface
func (e *OwnerError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *OwnerError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *OwnerError) WithDetails(details interface{}) *OwnerError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first OwnerError in err's chain, or "" when
// err carries none.
func CodeOf(err error) ErrorCode {
	var oe *OwnerError
	if stderrors.As(err, &oe) {
		return oe.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// UserMessage renders err the way it should be shown to a person: the bare
// message for errors we raised ourselves, the git diagnostic when there is one.
func UserMessage(err error) string {
	var oe *OwnerError
	if !stderrors.As(err, &oe) {
		return err.Error()
	}
	if oe.Code == VcsCommandFailed && oe.cause != nil {
		return fmt.Sprintf("Git error: %v", oe.cause)
	}
	return oe.Message
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	NotARepository: {
		{
			Type:        RunCommand,
			Command:     "git status",
			Safe:        true,
			Description: "Verify you're in a git repository",
		},
		{
			Type:        RunCommand,
			Command:     "git init",
			Safe:        false,
			Description: "Initialize a git repository",
		},
	},
	Timeout: {
		{
			Type:        RunCommand,
			Command:     "lineowner config show",
			Safe:        true,
			Description: "Check git.timeoutMs and raise it for very large histories",
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
