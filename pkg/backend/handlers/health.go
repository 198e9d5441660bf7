package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cecil-the-coder/ai-contingency/pkg/backendtypes"
)

type HealthHandler struct {
	providers ProviderSource
	version   string
	startTime time.Time
}

func NewHealthHandler(providers ProviderSource, version string) *HealthHandler {
	return &HealthHandler{
		providers: providers,
		version:   version,
		startTime: time.Now(),
	}
}

// Health returns liveness, version and uptime
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	SendSuccess(c, backendtypes.HealthResponse{
		Status:    "ok",
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Providers: len(h.providers.Providers()),
	})
}
