package handler

import (
	"net/http"

	"github.com/aman-churiwal/tutor-gateway/internal/healthcheck"
	"github.com/aman-churiwal/tutor-gateway/internal/provider"
	"github.com/gin-gonic/gin"
)

// Handles health and provider key endpoints
type SystemHandler struct {
	checker *healthcheck.Checker
	pool    *provider.KeyPool
}

// pool may be nil when no AI keys are configured.
func NewSystemHandler(checker *healthcheck.Checker, pool *provider.KeyPool) *SystemHandler {
	return &SystemHandler{
		checker: checker,
		pool:    pool,
	}
}

// Handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	overall := h.checker.OverallHealth()

	status := http.StatusOK
	if overall == healthcheck.Unhealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":       overall,
		"dependencies": h.checker.GetAllStatus(),
	})
}

// Returns the circuit breaker status of every provider API key
func (h *SystemHandler) ProviderStatus(c *gin.Context) {
	statuses := make(map[string]interface{})
	if h.pool == nil {
		c.JSON(http.StatusOK, statuses)
		return
	}

	for _, slot := range h.pool.Slots() {
		metrics := slot.Breaker.Metrics()

		statuses[slot.Label] = gin.H{
			"state":             metrics.State.String(),
			"failure_count":     metrics.FailureCount,
			"success_count":     metrics.SuccessCount,
			"in_flight":         slot.InFlight(),
			"last_failure_time": metrics.LastFailureTime,
			"last_state_change": metrics.LastStateChange,
		}
	}

	c.JSON(http.StatusOK, statuses)
}

// Manually resets a provider key's circuit breaker
func (h *SystemHandler) ResetProvider(c *gin.Context) {
	key := c.Param("key")

	if h.pool != nil {
		for _, slot := range h.pool.Slots() {
			if slot.Label == key {
				slot.Breaker.Reset()
				c.JSON(http.StatusOK, gin.H{
					"message": "Circuit breaker reset successfully",
					"key":     key,
				})
				return
			}
		}
	}

	c.JSON(http.StatusNotFound, gin.H{
		"error": "Provider key not found",
	})
}
