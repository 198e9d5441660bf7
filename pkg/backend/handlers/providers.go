package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cecil-the-coder/ai-contingency/pkg/backend/middleware"
	"github.com/cecil-the-coder/ai-contingency/pkg/backendtypes"
	"github.com/cecil-the-coder/ai-contingency/pkg/contingency"
	"github.com/cecil-the-coder/ai-contingency/pkg/monitor"
	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// HealthSource supplies the latest scheduled health snapshot.
type HealthSource interface {
	Snapshot() []monitor.ProviderHealth
}

// ProviderHandler manages provider-related endpoints
type ProviderHandler struct {
	dispatcher *contingency.Dispatcher
	providers  ProviderSource
	health     HealthSource
	logger     logrus.FieldLogger
}

// NewProviderHandler creates a new provider handler. health may be nil when no monitor
// runs, in which case the health endpoint reports an empty snapshot.
func NewProviderHandler(d *contingency.Dispatcher, providers ProviderSource, health HealthSource, logger logrus.FieldLogger) *ProviderHandler {
	return &ProviderHandler{
		dispatcher: d,
		providers:  providers,
		health:     health,
		logger:     logger,
	}
}

// ListProviders returns every configured provider
// GET /api/providers
func (h *ProviderHandler) ListProviders(c *gin.Context) {
	providers := h.providers.Providers()
	list := make([]backendtypes.ProviderInfo, 0, len(providers))
	for _, p := range providers {
		list = append(list, backendtypes.NewProviderInfo(p))
	}
	SendSuccess(c, list)
}

// Health returns the latest health sweep
// GET /api/providers/health
func (h *ProviderHandler) Health(c *gin.Context) {
	snapshot := []monitor.ProviderHealth{}
	if h.health != nil {
		snapshot = h.health.Snapshot()
	}
	SendSuccess(c, snapshot)
}

// TestProvider runs a single health-check call against one provider. A failed check is
// still a 200: the outcome is in the returned TestResult.
// POST /api/providers/:key/test
func (h *ProviderHandler) TestProvider(c *gin.Context) {
	key := c.Param("key")
	providers := h.providers.Providers()
	if _, ok := types.FindProvider(providers, key); !ok {
		SendError(c, http.StatusNotFound, backendtypes.CodeProviderNotFound, fmt.Sprintf("Provider '%s' not found", key))
		return
	}

	result := h.dispatcher.TestProvider(c.Request.Context(), key, providers)

	h.logger.WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(c),
		"provider":   key,
		"success":    result.Success,
		"latency_ms": result.LatencyMs,
		"event":      "provider_tested",
	}).Info("Provider tested")

	SendSuccess(c, result)
}
