package domain

import (
	"errors"
	"fmt"
)

// Error codes carried by DomainError. Transports report them verbatim.
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeFileNotFound      = "FILE_NOT_FOUND"
	ErrCodeAnalysisError     = "ANALYSIS_ERROR"
	ErrCodeConfigError       = "CONFIG_ERROR"
	ErrCodeOutputError       = "OUTPUT_ERROR"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeCancelled         = "CANCELLED"
)

// Sentinels for errors.Is; any DomainError with the same code matches.
var (
	ErrInvalidInput = DomainError{Code: ErrCodeInvalidInput}
	ErrConfig       = DomainError{Code: ErrCodeConfigError}
	ErrCancelled    = DomainError{Code: ErrCodeCancelled}
)

// DomainError is a coded error raised by the labeling layers
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e DomainError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
}

func (e DomainError) Unwrap() error {
	return e.Cause
}

// Is matches on the code only
func (e DomainError) Is(target error) bool {
	t, ok := target.(DomainError)
	return ok && t.Code == e.Code
}

// HasErrorCode reports whether err wraps a DomainError with the given code
func HasErrorCode(err error, code string) bool {
	return errors.Is(err, DomainError{Code: code})
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) error {
	return DomainError{Code: code, Message: message, Cause: cause}
}

// NewInvalidInputError reports unusable solutions or requests
func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

// NewFileNotFoundError reports a missing solution file
func NewFileNotFoundError(path string, cause error) error {
	return NewDomainError(ErrCodeFileNotFound, "file not found: "+path, cause)
}

// NewAnalysisError reports a pipeline failure
func NewAnalysisError(message string, cause error) error {
	return NewDomainError(ErrCodeAnalysisError, message, cause)
}

func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

func NewUnsupportedFormatError(format string) error {
	return NewDomainError(ErrCodeUnsupportedFormat, "unsupported format: "+format, nil)
}

// NewCancelledError wraps the context error of a stopped run
func NewCancelledError(cause error) error {
	return NewDomainError(ErrCodeCancelled, "labeling cancelled", cause)
}
