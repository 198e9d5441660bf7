package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cecil-the-coder/ai-contingency/pkg/backend/middleware"
	"github.com/cecil-the-coder/ai-contingency/pkg/backendtypes"
	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// ProviderSource supplies the current provider descriptors.
type ProviderSource interface {
	Providers() []types.ProviderDescriptor
}

// SendSuccess sends a 200 response with data
func SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, backendtypes.APIResponse{
		Success:   true,
		Data:      data,
		RequestID: middleware.GetRequestID(c),
		Timestamp: time.Now(),
	})
}

// SendError sends an error response with APIError
func SendError(c *gin.Context, statusCode int, code string, message string) {
	SendFailure(c, statusCode, code, message, nil)
}

// SendFailure sends an error response that still carries data, such as the attempt
// history of a failed dispatch.
func SendFailure(c *gin.Context, statusCode int, code string, message string, data interface{}) {
	c.JSON(statusCode, backendtypes.APIResponse{
		Success: false,
		Data:    data,
		Error: &backendtypes.APIError{
			Code:    code,
			Message: message,
		},
		RequestID: middleware.GetRequestID(c),
		Timestamp: time.Now(),
	})
}
