// Package common provides shared infrastructure for provider invokers: error
// classification, client-side rate limiting and authenticated HTTP clients.
package common

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// ClassifyStatus creates a ProviderError from an HTTP status code.
func ClassifyStatus(provider string, statusCode int, message string) *types.ProviderError {
	var code types.ErrorCode

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		code = types.ErrCodeAuthentication
	case statusCode == http.StatusTooManyRequests:
		code = types.ErrCodeRateLimit
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		code = types.ErrCodeTimeout
	case statusCode >= 400 && statusCode < 500:
		code = types.ErrCodeInvalidRequest
	case statusCode >= 500 && statusCode < 600:
		code = types.ErrCodeServerError
	default:
		code = types.ErrCodeUnknown
	}

	if message == "" {
		message = fmt.Sprintf("HTTP %d", statusCode)
	}
	return types.NewProviderError(provider, code, message).WithStatusCode(statusCode)
}

// ClassifyError turns any invoker error into a ProviderError. Errors that already
// carry a classification are returned unchanged.
func ClassifyError(provider string, err error) *types.ProviderError {
	if err == nil {
		return nil
	}

	var perr *types.ProviderError
	if errors.As(err, &perr) {
		return perr
	}

	code := classifyMessage(err)

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = types.ErrCodeTimeout
	case errors.Is(err, context.Canceled):
		code = types.ErrCodeTimeout
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			code = types.ErrCodeTimeout
		} else {
			code = types.ErrCodeNetwork
		}
	}

	return types.NewProviderError(provider, code, err.Error()).WithOriginalErr(err)
}

// classifyMessage inspects error text for SDKs that do not expose typed errors.
func classifyMessage(err error) types.ErrorCode {
	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "401") || strings.Contains(lower, "403") ||
		strings.Contains(lower, "unauthorized") || strings.Contains(lower, "authentication"):
		return types.ErrCodeAuthentication
	case strings.Contains(lower, "429") || strings.Contains(lower, "rate limit") || strings.Contains(lower, "rate_limit"):
		return types.ErrCodeRateLimit
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		return types.ErrCodeTimeout
	case strings.Contains(lower, "500") || strings.Contains(lower, "502") ||
		strings.Contains(lower, "503") || strings.Contains(lower, "overloaded"):
		return types.ErrCodeServerError
	case strings.Contains(lower, "connection") || strings.Contains(lower, "dns") || strings.Contains(lower, "refused"):
		return types.ErrCodeNetwork
	case strings.Contains(lower, "400") || strings.Contains(lower, "invalid"):
		return types.ErrCodeInvalidRequest
	default:
		return types.ErrCodeUnknown
	}
}
