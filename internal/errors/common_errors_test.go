package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "config", errType: ErrTypeConfig, expected: "CONFIG"},
		{name: "network", errType: ErrTypeNetwork, expected: "NETWORK"},
		{name: "link not found", errType: ErrTypeLinkNotFound, expected: "LINK_NOT_FOUND"},
		{name: "download", errType: ErrTypeDownload, expected: "DOWNLOAD"},
		{name: "sheet not found", errType: ErrTypeSheetNotFound, expected: "SHEET_NOT_FOUND"},
		{name: "marker not found", errType: ErrTypeMarkerNotFound, expected: "MARKER_NOT_FOUND"},
		{name: "parsing", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "storage", errType: ErrTypeStorage, expected: "STORAGE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name: "error without cause",
			appError: &AppError{
				Type:    ErrTypeMarkerNotFound,
				Message: "marker missing",
			},
			wantMessage: "[MARKER_NOT_FOUND] marker missing",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeNetwork,
				Message: "page fetch failed",
				Cause:   fmt.Errorf("connection refused"),
			},
			wantMessage: "[NETWORK] page fetch failed: connection refused",
		},
		{
			name: "error with empty message",
			appError: &AppError{
				Type: ErrTypeStorage,
			},
			wantMessage: "[STORAGE] ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("original error")
	appErr := NewDownloadError("download failed", cause)

	assert.Same(t, cause, appErr.Unwrap())
	assert.True(t, errors.Is(appErr, cause))
	assert.Nil(t, NewLinkNotFoundError("#content a").Unwrap())
}

func TestAppError_WithContext(t *testing.T) {
	appErr := &AppError{Type: ErrTypeParsing, Message: "bad cell"}
	require.Nil(t, appErr.Context)

	got := appErr.WithContext("cell", "B7").WithContext("sheet", "Data1")

	assert.Same(t, appErr, got)
	assert.Equal(t, "B7", appErr.Context["cell"])
	assert.Equal(t, "Data1", appErr.Context["sheet"])
}

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		contains string
	}{
		{name: "config", err: NewConfigError("bad config", cause), wantType: ErrTypeConfig, contains: "bad config"},
		{name: "network", err: NewNetworkError("fetch failed", cause), wantType: ErrTypeNetwork, contains: "fetch failed"},
		{name: "link", err: NewLinkNotFoundError("#content a"), wantType: ErrTypeLinkNotFound, contains: "site layout may have changed"},
		{name: "download", err: NewDownloadError("unexpected content type", nil), wantType: ErrTypeDownload, contains: "unexpected content type"},
		{name: "sheet", err: NewSheetNotFoundError("Data1", []string{"Index", "Data2"}), wantType: ErrTypeSheetNotFound, contains: `sheet "Data1" not found`},
		{name: "marker", err: NewMarkerNotFoundError("Series ID", "Data1"), wantType: ErrTypeMarkerNotFound, contains: `cannot find "Series ID"`},
		{name: "parsing", err: NewParsingError("cell B3 is not a number", cause), wantType: ErrTypeParsing, contains: "B3"},
		{name: "storage", err: NewStorageError("write failed", cause), wantType: ErrTypeStorage, contains: "write failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Contains(t, tt.err.Error(), tt.contains)
			assert.NotNil(t, tt.err.Context)
		})
	}
}

func TestSheetNotFoundListsAvailableSheets(t *testing.T) {
	err := NewSheetNotFoundError("Data1", []string{"Index", "Inquiries"})
	assert.Contains(t, err.Error(), "Index")
	assert.Contains(t, err.Error(), "Inquiries")
	assert.Equal(t, "Data1", err.Context["sheet"])
}

func TestIsType(t *testing.T) {
	wrapped := fmt.Errorf("run failed: %w", NewMarkerNotFoundError("Series ID", "Data1"))

	assert.True(t, IsType(wrapped, ErrTypeMarkerNotFound))
	assert.False(t, IsType(wrapped, ErrTypeSheetNotFound))
	assert.False(t, IsType(errors.New("plain"), ErrTypeMarkerNotFound))
	assert.False(t, IsType(nil, ErrTypeMarkerNotFound))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil is success", err: nil, want: ExitOK},
		{name: "plain error", err: errors.New("plain"), want: ExitUnexpected},
		{name: "config", err: NewConfigError("x", nil), want: ExitConfig},
		{name: "page fetch", err: NewNetworkError("x", nil), want: ExitPageFetch},
		{name: "link not found", err: NewLinkNotFoundError("#content a"), want: ExitLinkNotFound},
		{name: "download", err: NewDownloadError("x", nil), want: ExitDownload},
		{name: "sheet", err: NewSheetNotFoundError("Data1", nil), want: ExitSheetNotFound},
		{name: "marker", err: NewMarkerNotFoundError("Series ID", "Data1"), want: ExitMarkerNotFound},
		{name: "parsing", err: NewParsingError("x", nil), want: ExitParsing},
		{name: "storage", err: NewStorageError("x", nil), want: ExitStorage},
		{name: "wrapped", err: fmt.Errorf("stage download: %w", NewDownloadError("x", nil)), want: ExitDownload},
		{name: "unknown type", err: NewAppError(ErrorType("OTHER"), "x", nil), want: ExitUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestExitCodesAreDistinct(t *testing.T) {
	seen := make(map[int]ErrorType)
	for errType, code := range exitCodes {
		if other, ok := seen[code]; ok {
			t.Fatalf("exit code %d shared by %s and %s", code, errType, other)
		}
		assert.NotEqual(t, ExitOK, code)
		seen[code] = errType
	}
}

func TestIsTypeUsesOutermostAppError(t *testing.T) {
	inner := NewParsingError("cannot parse cell B2", nil)
	outer := NewStorageError("failed to write output", inner)
	wrapped := fmt.Errorf("step transpose: %w", outer)

	assert.True(t, IsType(wrapped, ErrTypeStorage))
	assert.False(t, IsType(wrapped, ErrTypeParsing))
	assert.Equal(t, ExitStorage, ExitCode(wrapped))
}
