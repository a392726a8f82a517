package handler

import (
	"context"
	"net/http"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/gateway"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TutoringHistory lists a user's past doubts and derivations.
type TutoringHistory interface {
	ListDoubts(ctx context.Context, userID uuid.UUID) ([]models.Doubt, error)
	ListDerivations(ctx context.Context, userID uuid.UUID) ([]models.Derivation, error)
}

type TutoringHandler struct {
	gateway *gateway.Gateway
	history TutoringHistory
}

func NewTutoringHandler(gw *gateway.Gateway, history TutoringHistory) *TutoringHandler {
	return &TutoringHandler{gateway: gw, history: history}
}

// Handles POST /api/doubts
func (h *TutoringHandler) CreateDoubt(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if !h.gateway.Configured() {
		respondError(c, apperr.ErrServiceUnavailable)
		return
	}

	var req gateway.DoubtRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.gateway.SubmitDoubt(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Handles GET /api/doubts
func (h *TutoringHandler) ListDoubts(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	doubts, err := h.history.ListDoubts(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if doubts == nil {
		doubts = []models.Doubt{}
	}

	c.JSON(http.StatusOK, doubts)
}

// Handles POST /api/derivations
func (h *TutoringHandler) CreateDerivation(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	if !h.gateway.Configured() {
		respondError(c, apperr.ErrServiceUnavailable)
		return
	}

	var req gateway.DerivationRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.gateway.SubmitDerivation(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Handles GET /api/derivations
func (h *TutoringHandler) ListDerivations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	derivations, err := h.history.ListDerivations(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if derivations == nil {
		derivations = []models.Derivation{}
	}

	c.JSON(http.StatusOK, derivations)
}
