package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/customeros/mailtriage/internal/models"
)

// HealthCheck provides a simple health check endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Status reports the operating mode the server runs triage in.
func Status(caps models.Capabilities, policy models.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"mode":         caps.Mode(),
			"missing":      caps.Missing(),
			"dnd_mode":     policy.DNDMode,
			"max_emails":   policy.MaxEmails,
			"threshold":    policy.PriorityThreshold,
			"capabilities": caps,
		})
	}
}
