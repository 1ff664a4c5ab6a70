package models

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of agent failure
type ErrorCode string

const (
	ErrInvalidConfiguration  ErrorCode = "invalidConfiguration"
	ErrResourceLimitExceeded ErrorCode = "resourceLimitExceeded"
	ErrTaskExecutionFailed   ErrorCode = "taskExecutionFailed"
	ErrModelLoadingFailed    ErrorCode = "modelLoadingFailed"
	ErrDataPipelineError     ErrorCode = "dataPipelineError"
	ErrFailoverRequired      ErrorCode = "failoverRequired"
)

// AgentError carries an error code alongside a message and optional cause.
// errors.Is matches two AgentErrors by code, so callers can branch on
// models.NewAgentError(code, "") sentinels without string comparison.
type AgentError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *AgentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AgentError) Unwrap() error {
	return e.Cause
}

func (e *AgentError) Is(target error) bool {
	var other *AgentError
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// NewAgentError creates an AgentError with the given code and message
func NewAgentError(code ErrorCode, message string) *AgentError {
	return &AgentError{Code: code, Message: message}
}

// WrapAgentError creates an AgentError wrapping an underlying cause
func WrapAgentError(code ErrorCode, message string, cause error) *AgentError {
	return &AgentError{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the error code from err, or empty when err is not an
// AgentError.
func CodeOf(err error) ErrorCode {
	var agentErr *AgentError
	if errors.As(err, &agentErr) {
		return agentErr.Code
	}
	return ""
}
