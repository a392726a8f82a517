package handler

import (
	"io"
	"net/http"

	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/service"
	"github.com/gin-gonic/gin"
)

const maxWebhookBytes = 64 << 10

type SubscriptionHandler struct {
	service *service.SubscriptionService
}

func NewSubscriptionHandler(service *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

// Handles GET /api/subscription/tiers
func (h *SubscriptionHandler) Tiers(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Tiers())
}

// Handles POST /api/subscription/create-checkout
func (h *SubscriptionHandler) CreateCheckout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Tier models.Tier `json:"tier" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.service.CreateCheckout(c.Request.Context(), userID, req.Tier)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// Handles POST /api/subscription/webhook
func (h *SubscriptionHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	if err := h.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
