package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeConfig         ErrorType = "CONFIG"
	ErrTypeNetwork        ErrorType = "NETWORK"
	ErrTypeLinkNotFound   ErrorType = "LINK_NOT_FOUND"
	ErrTypeDownload       ErrorType = "DOWNLOAD"
	ErrTypeSheetNotFound  ErrorType = "SHEET_NOT_FOUND"
	ErrTypeMarkerNotFound ErrorType = "MARKER_NOT_FOUND"
	ErrTypeParsing        ErrorType = "PARSING"
	ErrTypeStorage        ErrorType = "STORAGE"
)

// Process exit codes, one per failure kind. 0 is success.
const (
	ExitOK             = 0
	ExitUnexpected     = 1
	ExitConfig         = 2
	ExitPageFetch      = 3
	ExitLinkNotFound   = 4
	ExitDownload       = 5
	ExitSheetNotFound  = 6
	ExitMarkerNotFound = 7
	ExitParsing        = 8
	ExitStorage        = 9
)

var exitCodes = map[ErrorType]int{
	ErrTypeConfig:         ExitConfig,
	ErrTypeNetwork:        ExitPageFetch,
	ErrTypeLinkNotFound:   ExitLinkNotFound,
	ErrTypeDownload:       ExitDownload,
	ErrTypeSheetNotFound:  ExitSheetNotFound,
	ErrTypeMarkerNotFound: ExitMarkerNotFound,
	ErrTypeParsing:        ExitParsing,
	ErrTypeStorage:        ExitStorage,
}

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// Helper functions for common error types

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// NewNetworkError creates an error for a failed page fetch
func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

// NewLinkNotFoundError reports that the release link could not be located
func NewLinkNotFoundError(selector string) *AppError {
	return NewAppError(ErrTypeLinkNotFound,
		"target structure not found - site layout may have changed", nil).
		WithContext("selector", selector)
}

// NewDownloadError creates an error for a failed workbook download
func NewDownloadError(message string, cause error) *AppError {
	return NewAppError(ErrTypeDownload, message, cause)
}

// NewSheetNotFoundError reports a missing worksheet and the sheets that do exist
func NewSheetNotFoundError(sheet string, available []string) *AppError {
	return NewAppError(ErrTypeSheetNotFound,
		fmt.Sprintf("sheet %q not found in workbook (available: %v)", sheet, available), nil).
		WithContext("sheet", sheet)
}

// NewMarkerNotFoundError reports that no row starts with the marker text
func NewMarkerNotFoundError(marker, sheet string) *AppError {
	return NewAppError(ErrTypeMarkerNotFound,
		fmt.Sprintf("cannot find %q in the first column of sheet %q", marker, sheet), nil).
		WithContext("marker", marker)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// IsType reports whether the first AppError in err's chain has the given
// type. Nested AppErrors are not consulted, matching ExitCode.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// ExitCode maps an error chain to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		if code, ok := exitCodes[appErr.Type]; ok {
			return code
		}
	}
	return ExitUnexpected
}
