// Package handlers implements the detection API endpoints.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veritype/veritype/internal/interfaces/http/middleware"
	apperrors "github.com/veritype/veritype/pkg/errors"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// respondError maps an error to its HTTP status and writes the standard body.
// Server-side failures are masked; the code still identifies the failure class.
func respondError(c *gin.Context, err error) {
	code := apperrors.ErrCodeInternal
	message := err.Error()

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}

	status := apperrors.HTTPStatusForCode(code)
	if status >= http.StatusInternalServerError {
		message = apperrors.DefaultMessageForCode(code)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:      string(code),
		Message:   message,
		RequestID: middleware.GetRequestID(c),
	})
}

func respondValidationError(c *gin.Context, message string) {
	respondError(c, apperrors.New(apperrors.ErrCodeValidation, message))
}
