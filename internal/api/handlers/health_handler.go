package handlers

import (
	"net/http"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	svc services.HealthService
}

func NewHealthHandler(svc services.HealthService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func (h *HealthHandler) Health(c *gin.Context) {
	r := h.svc.Check(c.Request.Context())
	status := http.StatusOK
	if !r.OK {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, r)
}
