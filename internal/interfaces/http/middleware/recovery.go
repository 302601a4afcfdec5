package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veritype/veritype/internal/infrastructure/monitoring/logging"
)

// Recovery converts panics into 500 responses and logs the panic value.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.Named("http")

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					logging.String("request_id", GetRequestID(c)),
					logging.String("path", c.Request.URL.Path),
					logging.Any("panic", r),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code":       "COMMON_001",
					"message":    "internal server error",
					"request_id": GetRequestID(c),
				})
			}
		}()
		c.Next()
	}
}
