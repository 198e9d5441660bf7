package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cecil-the-coder/ai-contingency/pkg/backend/middleware"
	"github.com/cecil-the-coder/ai-contingency/pkg/backendtypes"
	"github.com/cecil-the-coder/ai-contingency/pkg/contingency"
	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

type DispatchHandler struct {
	dispatcher *contingency.Dispatcher
	providers  ProviderSource
	logger     logrus.FieldLogger
}

func NewDispatchHandler(d *contingency.Dispatcher, providers ProviderSource, logger logrus.FieldLogger) *DispatchHandler {
	return &DispatchHandler{
		dispatcher: d,
		providers:  providers,
		logger:     logger,
	}
}

// Dispatch runs one request through the provider chain.
// POST /api/dispatch
//
//	200 success, data is the DispatchResult
//	400 malformed body or invalid request
//	502 every provider exhausted, data still carries the attempts
//	503 no enabled provider
func (h *DispatchHandler) Dispatch(c *gin.Context) {
	log := h.logger.WithField("request_id", middleware.GetRequestID(c))

	var req types.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		log.WithFields(logrus.Fields{"error": err.Error(), "event": "parse_error"}).Warn("Failed to parse request body")
		SendError(c, http.StatusBadRequest, backendtypes.CodeInvalidRequest, "Failed to parse request body: "+err.Error())
		return
	}

	result, err := h.dispatcher.Dispatch(c.Request.Context(), req, h.providers.Providers())
	switch {
	case errors.Is(err, types.ErrInvalidRequest):
		SendError(c, http.StatusBadRequest, backendtypes.CodeInvalidRequest, err.Error())
		return
	case errors.Is(err, types.ErrNoProvidersConfigured):
		SendError(c, http.StatusServiceUnavailable, backendtypes.CodeNoProviders, err.Error())
		return
	case errors.Is(err, types.ErrDispatchCancelled):
		SendFailure(c, http.StatusRequestTimeout, backendtypes.CodeDispatchCancelled, err.Error(), result)
		return
	case err != nil:
		_ = c.Error(err)
		SendError(c, http.StatusInternalServerError, backendtypes.CodeInternal, err.Error())
		return
	}

	log = log.WithFields(logrus.Fields{
		"dispatch_id": result.DispatchID,
		"attempts":    len(result.Attempts),
		"latency_ms":  result.TotalDurationMs,
	})

	if !result.Success {
		log.WithField("event", "dispatch_exhausted").Warn("All providers exhausted")
		SendFailure(c, http.StatusBadGateway, backendtypes.CodeProvidersExhausted, result.Error, result)
		return
	}

	log.WithFields(logrus.Fields{
		"provider":      result.ProviderKey,
		"fallback_used": result.FallbackUsed,
		"event":         "success",
	}).Info("Request successful")
	SendSuccess(c, result)
}
