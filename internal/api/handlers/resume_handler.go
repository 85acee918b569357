package handlers

import (
	"net/http"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

type ResumeHandler struct {
	svc services.ResumeService
}

func NewResumeHandler(svc services.ResumeService) *ResumeHandler {
	return &ResumeHandler{svc: svc}
}

func (h *ResumeHandler) ListEducation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	rows, err := h.svc.ListEducation(c.Request.Context(), userID)
	respond(c, http.StatusOK, rows, err)
}

func (h *ResumeHandler) AddEducation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req models.Education
	if !bindJSON(c, "ResumeHandler.AddEducation", &req) {
		return
	}
	out, err := h.svc.AddEducation(c.Request.Context(), userID, req)
	respond(c, http.StatusCreated, out, err)
}

func (h *ResumeHandler) UpdateEducation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.Education
	if !bindJSON(c, "ResumeHandler.UpdateEducation", &req) {
		return
	}
	out, err := h.svc.UpdateEducation(c.Request.Context(), userID, id, req)
	respond(c, http.StatusOK, out, err)
}

func (h *ResumeHandler) DeleteEducation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	respondNoContent(c, h.svc.DeleteEducation(c.Request.Context(), userID, id))
}

func (h *ResumeHandler) ListExperiences(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	rows, err := h.svc.ListExperiences(c.Request.Context(), userID)
	respond(c, http.StatusOK, rows, err)
}

func (h *ResumeHandler) AddExperience(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req models.Experience
	if !bindJSON(c, "ResumeHandler.AddExperience", &req) {
		return
	}
	out, err := h.svc.AddExperience(c.Request.Context(), userID, req)
	respond(c, http.StatusCreated, out, err)
}

func (h *ResumeHandler) UpdateExperience(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.Experience
	if !bindJSON(c, "ResumeHandler.UpdateExperience", &req) {
		return
	}
	out, err := h.svc.UpdateExperience(c.Request.Context(), userID, id, req)
	respond(c, http.StatusOK, out, err)
}

func (h *ResumeHandler) DeleteExperience(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	respondNoContent(c, h.svc.DeleteExperience(c.Request.Context(), userID, id))
}

func (h *ResumeHandler) ListSkills(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	rows, err := h.svc.ListSkills(c.Request.Context(), userID)
	respond(c, http.StatusOK, rows, err)
}

func (h *ResumeHandler) AddSkill(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req models.Skill
	if !bindJSON(c, "ResumeHandler.AddSkill", &req) {
		return
	}
	out, err := h.svc.AddSkill(c.Request.Context(), userID, req)
	respond(c, http.StatusCreated, out, err)
}

func (h *ResumeHandler) UpdateSkill(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req models.Skill
	if !bindJSON(c, "ResumeHandler.UpdateSkill", &req) {
		return
	}
	out, err := h.svc.UpdateSkill(c.Request.Context(), userID, id, req)
	respond(c, http.StatusOK, out, err)
}

func (h *ResumeHandler) DeleteSkill(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	respondNoContent(c, h.svc.DeleteSkill(c.Request.Context(), userID, id))
}

func respond(c *gin.Context, status int, body any, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, body)
}

func respondNoContent(c *gin.Context, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
