package handlers

import (
	"errors"
	"net/http"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/services"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
	"github.com/gin-gonic/gin"
)

type ZohoHandler struct {
	svc services.ZohoService
}

func NewZohoHandler(svc services.ZohoService) *ZohoHandler {
	return &ZohoHandler{svc: svc}
}

type zohoAuthRequest struct {
	RedirectURL string `json:"redirectUrl" binding:"required"`
}

func (h *ZohoHandler) Auth(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req zohoAuthRequest
	if !bindJSON(c, "ZohoHandler.Auth", &req) {
		return
	}
	u, err := h.svc.AuthURL(c.Request.Context(), userID, req.RedirectURL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authUrl": u})
}

type zohoCallbackRequest struct {
	Code        string `json:"code" binding:"required"`
	RedirectURL string `json:"redirectUrl" binding:"required"`
	State       string `json:"state"`
}

func (h *ZohoHandler) Callback(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req zohoCallbackRequest
	if !bindJSON(c, "ZohoHandler.Callback", &req) {
		return
	}
	if err := h.svc.Callback(c.Request.Context(), userID, req.Code, req.RedirectURL, req.State); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ZohoHandler) Disconnect(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.svc.Disconnect(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ZohoHandler) Status(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	st, err := h.svc.Status(c.Request.Context(), userID)
	respond(c, http.StatusOK, st, err)
}

func (h *ZohoHandler) SyncApplication(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.SyncOwnedApplication(c.Request.Context(), userID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ZohoHandler) SyncAll(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	h.syncAll(c, userID)
}

// SyncAllFor lets an operator run the sync on behalf of any employer.
func (h *ZohoHandler) SyncAllFor(c *gin.Context) {
	employerID, ok := idParam(c, "employer_id")
	if !ok {
		return
	}
	h.syncAll(c, employerID)
}

func (h *ZohoHandler) syncAll(c *gin.Context, employerID string) {
	n, err := h.svc.SyncAllUsers(c.Request.Context(), employerID)
	if err != nil {
		// count covers the batches sent before the failure
		body := gin.H{"success": false, "count": n, "code": utils.CodeInternal, "message": "sync failed"}
		var ae *utils.AppError
		if errors.As(err, &ae) {
			body["code"], body["message"] = ae.Code, ae.Message
		}
		c.JSON(utils.HTTPStatus(err), body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": n})
}
