package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"groupme-bot/internal/middleware"
	"groupme-bot/internal/telemetry"
)

// RegisterDebugRoutes wires debug-only endpoints.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, token string, enabled bool) {
	if !enabled {
		return
	}

	debug := router.Group("/debug", middleware.DebugAuth(token))

	debug.GET("/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitter.Emit(c.Request.Context(), "INFO", "audit test", requestIDFromContext(c), "", nil)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
