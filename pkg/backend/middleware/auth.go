package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cecil-the-coder/ai-contingency/pkg/backendtypes"
)

// Auth requires "Authorization: Bearer <key>" on every path outside PublicPaths. The key
// is APIPassword, or the value of the APIKeyEnv variable. With no key configured every
// request passes.
func Auth(config backendtypes.AuthConfig) gin.HandlerFunc {
	expectedKey := config.APIPassword
	if expectedKey == "" && config.APIKeyEnv != "" {
		expectedKey = os.Getenv(config.APIKeyEnv)
	}

	return func(c *gin.Context) {
		if !config.Enabled || expectedKey == "" {
			c.Next()
			return
		}

		for _, path := range config.PublicPaths {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(expectedKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, backendtypes.APIResponse{
				Success: false,
				Error: &backendtypes.APIError{
					Code:    backendtypes.CodeUnauthorized,
					Message: "Invalid or missing API key",
				},
				RequestID: GetRequestID(c),
				Timestamp: time.Now(),
			})
			return
		}

		c.Next()
	}
}
