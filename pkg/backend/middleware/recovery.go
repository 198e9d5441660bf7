package middleware

import (
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cecil-the-coder/ai-contingency/pkg/backendtypes"
)

// Recovery turns a handler panic into a 500 JSON envelope and logs the stack.
func Recovery(logger logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, err any) {
		requestID := GetRequestID(c)
		logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"event":      "panic",
			"panic":      err,
		}).Errorf("Recovered from panic\n%s", debug.Stack())

		c.AbortWithStatusJSON(http.StatusInternalServerError, backendtypes.APIResponse{
			Success: false,
			Error: &backendtypes.APIError{
				Code:    backendtypes.CodeInternal,
				Message: "An internal error occurred",
			},
			RequestID: requestID,
			Timestamp: time.Now(),
		})
	})
}
