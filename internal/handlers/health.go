package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/speeddate-dev/speeddate/db"
)

func (h *Handler) HealthCheck(c *gin.Context) {
	status, code := "ok", http.StatusOK

	if sqlDB, err := db.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"message":   "Speeddate is running",
		"timestamp": h.now().Format(time.RFC3339),
	})
}
