package handlers

import (
	"context"
	"net/http"
	"time"

	"chemnitz-facilities-api/internal/database"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	Store database.Store
}

// Health reports whether the document store answers a ping.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
