package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"whisprdraw-backend/internal/models"
)

// StatusHandler godoc
// @Summary     Liveness check
// @Tags        status
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Router      /status [get]
func StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}
