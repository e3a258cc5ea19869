package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Shashank-1177/SBFood/models"
	"github.com/Shashank-1177/SBFood/statemachine"

	"github.com/gin-gonic/gin"
)

// GetStateMachineInfo returns the full state machine for informational purposes
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": []models.OrderStatus{models.StatusDelivered, models.StatusCancelled},
		"description":     "Food Order Lifecycle State Machine",
	})
}

// Health runs every registered dependency check. Any failure turns the
// response into a 503.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			deps[name] = err.Error()
			continue
		}
		deps[name] = "ok"
	}
	c.JSON(status, gin.H{
		"success":      status == http.StatusOK,
		"message":      "SB Foods API",
		"dependencies": deps,
		"timestamp":    time.Now().UTC(),
	})
}
