package handlers

import (
	"io"
	"net/http"

	"github.com/Varial17/studyfin-jobboard-sub000/internal/api/middleware"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/services"
	"github.com/Varial17/studyfin-jobboard-sub000/internal/utils"
	"github.com/gin-gonic/gin"
)

const maxWebhookBytes = 64 << 10

type BillingHandler struct {
	svc services.BillingService
}

func NewBillingHandler(svc services.BillingService) *BillingHandler {
	return &BillingHandler{svc: svc}
}

type checkoutRequest struct {
	ReturnURL string `json:"return_url" binding:"required"`
	CouponID  string `json:"coupon_id"`
	Email     string `json:"email" binding:"omitempty,email"`
}

type urlResponse struct {
	URL string `json:"url"`
}

func (h *BillingHandler) Checkout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req checkoutRequest
	if !bindJSON(c, "BillingHandler.Checkout", &req) {
		return
	}
	email := req.Email
	if email == "" {
		email = c.GetString(middleware.CtxEmail)
	}

	u, err := h.svc.CreateCheckout(c.Request.Context(), userID, email, req.ReturnURL, req.CouponID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, urlResponse{URL: u})
}

type verifyRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

func (h *BillingHandler) VerifyCheckout(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req verifyRequest
	if !bindJSON(c, "BillingHandler.VerifyCheckout", &req) {
		return
	}
	st, err := h.svc.VerifyCheckout(c.Request.Context(), userID, req.SessionID)
	respond(c, http.StatusOK, st, err)
}

type portalRequest struct {
	ReturnURL string `json:"return_url" binding:"required"`
}

func (h *BillingHandler) Portal(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req portalRequest
	if !bindJSON(c, "BillingHandler.Portal", &req) {
		return
	}
	u, err := h.svc.CustomerPortal(c.Request.Context(), userID, req.ReturnURL)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, urlResponse{URL: u})
}

func (h *BillingHandler) Status(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	st, err := h.svc.Status(c.Request.Context(), userID)
	respond(c, http.StatusOK, st, err)
}

// Webhook is called by the payment provider, not the browser; it is
// authenticated by the Stripe-Signature header only.
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "BillingHandler.Webhook", "failed to read body", err))
		return
	}

	outcome, err := h.svc.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "outcome": outcome})
}
