package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cecil-the-coder/ai-contingency/pkg/backendtypes"
	"github.com/cecil-the-coder/ai-contingency/pkg/contingency"
)

type StatsHandler struct {
	dispatcher *contingency.Dispatcher
}

func NewStatsHandler(d *contingency.Dispatcher) *StatsHandler {
	return &StatsHandler{dispatcher: d}
}

// Stats aggregates the attempt log over ?days=N, seven days when omitted.
// GET /api/stats
func (h *StatsHandler) Stats(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			SendError(c, http.StatusBadRequest, backendtypes.CodeInvalidRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	stats, err := h.dispatcher.Stats(c.Request.Context(), days)
	if errors.Is(err, contingency.ErrNoAttemptLog) {
		SendError(c, http.StatusServiceUnavailable, backendtypes.CodeStatsUnavailable, err.Error())
		return
	}
	if err != nil {
		_ = c.Error(err)
		SendError(c, http.StatusInternalServerError, backendtypes.CodeInternal, err.Error())
		return
	}

	SendSuccess(c, stats)
}
