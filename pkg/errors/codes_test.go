package errors

import (
	"net/http"
	"testing"
)

func TestHTTPStatusForCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code   ErrorCode
		status int
	}{
		{ErrCodeEmptyInput, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeOracleUnavailable, http.StatusBadGateway},
		{ErrCodeOracleDisabled, http.StatusForbidden},
		{ErrCodeSourceUnsupported, http.StatusUnsupportedMediaType},
		{ErrCodeBatchTooLarge, http.StatusRequestEntityTooLarge},
		{ErrorCode("NOPE_999"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatusForCode(tt.code); got != tt.status {
			t.Errorf("HTTPStatusForCode(%s) = %d, want %d", tt.code, got, tt.status)
		}
	}
}

func TestDefaultMessageForCode(t *testing.T) {
	t.Parallel()

	if got := DefaultMessageForCode(ErrCodeEmptyInput); got != "no usable input" {
		t.Errorf("message = %q", got)
	}
	if got := DefaultMessageForCode(ErrorCode("NOPE_999")); got != "unknown error" {
		t.Errorf("unknown code message = %q", got)
	}
}

func TestClientServerClassification(t *testing.T) {
	t.Parallel()

	if !IsClientError(ErrCodeBadRequest) {
		t.Error("COMMON_002 should be a client error")
	}
	if IsClientError(ErrCodeInternal) {
		t.Error("COMMON_001 should not be a client error")
	}
	if !IsServerError(ErrCodeEventPublishFailed) {
		t.Error("EVT_001 should be a server error")
	}
}

func TestModuleForCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code   ErrorCode
		module string
	}{
		{ErrCodeEmptyInput, "DET"},
		{ErrCodeSourceParseError, "SRC"},
		{ErrCodeOracleDisabled, "ORC"},
		{ErrCodeInternal, "COMMON"},
	}
	for _, tt := range tests {
		if got := ModuleForCode(tt.code); got != tt.module {
			t.Errorf("ModuleForCode(%s) = %s, want %s", tt.code, got, tt.module)
		}
	}
}
