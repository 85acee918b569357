package handlers

import (
	"net/http"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/api/middleware"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/models"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/services"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/storage"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	svc services.ProfileService
}

func NewProfileHandler(svc services.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	p, err := h.svc.GetMe(c.Request.Context(), userID, c.GetString(middleware.CtxEmail))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) UpdateDetails(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req models.ProfileDetailsPatch
	if !bindJSON(c, "ProfileHandler.UpdateDetails", &req) {
		return
	}
	p, err := h.svc.UpdateDetails(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) UpdateEducation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req models.ProfileEducationPatch
	if !bindJSON(c, "ProfileHandler.UpdateEducation", &req) {
		return
	}
	p, err := h.svc.UpdateEducation(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type changeRoleRequest struct {
	Role models.ProfileRole `json:"role" binding:"required,oneof=applicant employer"`
}

func (h *ProfileHandler) ChangeRole(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req changeRoleRequest
	if !bindJSON(c, "ProfileHandler.ChangeRole", &req) {
		return
	}
	p, err := h.svc.ChangeRole(c.Request.Context(), userID, req.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) UploadCV(c *gin.Context) {
	const op = "ProfileHandler.UploadCV"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "missing multipart field 'file'", err))
		return
	}
	if fh.Size > storage.MaxCVBytes {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "file too large (max 10MB)", nil))
		return
	}

	file, err := fh.Open()
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to open upload", err))
		return
	}
	defer file.Close()

	// sniff instead of trusting the client header
	head := make([]byte, 512)
	n, _ := file.Read(head)
	ct := http.DetectContentType(head[:n])
	if _, err := file.Seek(0, 0); err != nil {
		writeError(c, utils.E(utils.CodeInternal, op, "failed to rewind upload", err))
		return
	}

	p, err := h.svc.UploadCV(c.Request.Context(), userID, ct, fh.Size, file)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
