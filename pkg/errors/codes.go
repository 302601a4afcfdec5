package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeCacheError         ErrorCode = "COMMON_012"
	ErrCodeExternalService    ErrorCode = "COMMON_013"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_014"
	ErrCodeNotImplemented     ErrorCode = "COMMON_015"
)

// Sentinel codes used by chain helpers.
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Detection module error codes.
const (
	ErrCodeEmptyInput         ErrorCode = "DET_001"
	ErrCodeTextTooLarge       ErrorCode = "DET_002"
	ErrCodeBatchEmpty         ErrorCode = "DET_003"
	ErrCodeBatchTooLarge      ErrorCode = "DET_004"
	ErrCodeDetectionFailed    ErrorCode = "DET_005"
	ErrCodeInvalidWeights     ErrorCode = "DET_006"
	ErrCodeExportFailed       ErrorCode = "DET_007"
	ErrCodeBatchElementFailed ErrorCode = "DET_008"
)

// Batch source (uploaded file) error codes.
const (
	ErrCodeSourceParseError    ErrorCode = "SRC_001"
	ErrCodeSourceNoTextColumn  ErrorCode = "SRC_002"
	ErrCodeSourceUnsupported   ErrorCode = "SRC_003"
	ErrCodeSourceEmpty         ErrorCode = "SRC_004"
)

// Secondary-opinion oracle error codes.
const (
	ErrCodeOracleDisabled     ErrorCode = "ORC_001"
	ErrCodeOracleUnavailable  ErrorCode = "ORC_002"
	ErrCodeOracleBadResponse  ErrorCode = "ORC_003"
	ErrCodeOracleRateLimited  ErrorCode = "ORC_004"
)

// Event publishing error codes.
const (
	ErrCodeEventPublishFailed ErrorCode = "EVT_001"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusInternalServerError,
	ErrCodeFeatureDisabled:    http.StatusForbidden,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeEmptyInput:         http.StatusBadRequest,
	ErrCodeTextTooLarge:       http.StatusRequestEntityTooLarge,
	ErrCodeBatchEmpty:         http.StatusBadRequest,
	ErrCodeBatchTooLarge:      http.StatusRequestEntityTooLarge,
	ErrCodeDetectionFailed:    http.StatusInternalServerError,
	ErrCodeInvalidWeights:     http.StatusInternalServerError,
	ErrCodeExportFailed:       http.StatusInternalServerError,
	ErrCodeBatchElementFailed: http.StatusBadRequest,

	ErrCodeSourceParseError:   http.StatusBadRequest,
	ErrCodeSourceNoTextColumn: http.StatusBadRequest,
	ErrCodeSourceUnsupported:  http.StatusUnsupportedMediaType,
	ErrCodeSourceEmpty:        http.StatusBadRequest,

	ErrCodeOracleDisabled:    http.StatusForbidden,
	ErrCodeOracleUnavailable: http.StatusBadGateway,
	ErrCodeOracleBadResponse: http.StatusBadGateway,
	ErrCodeOracleRateLimited: http.StatusTooManyRequests,

	ErrCodeEventPublishFailed: http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeFeatureDisabled:    "feature disabled",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeEmptyInput:         "no usable input",
	ErrCodeTextTooLarge:       "text exceeds the maximum allowed size",
	ErrCodeBatchEmpty:         "batch contains no texts",
	ErrCodeBatchTooLarge:      "batch exceeds the maximum allowed size",
	ErrCodeDetectionFailed:    "detection failed",
	ErrCodeInvalidWeights:     "invalid detector weight configuration",
	ErrCodeExportFailed:       "failed to export results",
	ErrCodeBatchElementFailed: "batch element failed",

	ErrCodeSourceParseError:   "failed to parse batch file",
	ErrCodeSourceNoTextColumn: "batch file has no usable text field",
	ErrCodeSourceUnsupported:  "unsupported batch file format",
	ErrCodeSourceEmpty:        "batch file contains no rows",

	ErrCodeOracleDisabled:    "secondary-opinion oracle is disabled",
	ErrCodeOracleUnavailable: "secondary-opinion oracle unavailable",
	ErrCodeOracleBadResponse: "secondary-opinion oracle returned an unparsable reply",
	ErrCodeOracleRateLimited: "secondary-opinion oracle rate limited",

	ErrCodeEventPublishFailed: "failed to publish detection event",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
