package handlers

import (
	"net/http"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	svc services.ApplicationService
}

func NewApplicationHandler(svc services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{svc: svc}
}

type applyRequest struct {
	CoverLetter string `json:"cover_letter" binding:"max=10000"`
}

func (h *ApplicationHandler) Apply(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req applyRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, "ApplicationHandler.Apply", &req) {
		return
	}
	app, err := h.svc.Submit(c.Request.Context(), userID, id, req.CoverLetter)
	respond(c, http.StatusCreated, app, err)
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	rows, err := h.svc.ListMine(c.Request.Context(), userID)
	respond(c, http.StatusOK, rows, err)
}

type changeStatusRequest struct {
	Status models.ApplicationStatus `json:"status" binding:"required"`
}

func (h *ApplicationHandler) ChangeStatus(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req changeStatusRequest
	if !bindJSON(c, "ApplicationHandler.ChangeStatus", &req) {
		return
	}
	app, err := h.svc.ChangeStatus(c.Request.Context(), userID, id, req.Status)
	respond(c, http.StatusOK, app, err)
}

func (h *ApplicationHandler) ApplicantDetail(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	d, err := h.svc.ApplicantDetail(c.Request.Context(), userID, id)
	respond(c, http.StatusOK, d, err)
}
