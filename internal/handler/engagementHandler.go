package handler

import (
	"net/http"

	"github.com/aman-churiwal/tutor-gateway/internal/service"
	"github.com/gin-gonic/gin"
)

type EngagementHandler struct {
	service *service.EngagementService
}

func NewEngagementHandler(service *service.EngagementService) *EngagementHandler {
	return &EngagementHandler{service: service}
}

// Handles GET /api/quests
func (h *EngagementHandler) ListQuests(c *gin.Context) {
	quests, err := h.service.ListQuests(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, quests)
}

// Handles GET /api/user-quests
func (h *EngagementHandler) ListUserQuests(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	quests, err := h.service.ListUserQuests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, quests)
}

// Handles POST /api/quests/:questId/start
func (h *EngagementHandler) StartQuest(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	questID, ok := uuidParam(c, "questId")
	if !ok {
		return
	}

	userQuest, err := h.service.StartQuest(c.Request.Context(), userID, questID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, userQuest)
}

// Handles GET /api/achievements
func (h *EngagementHandler) ListAchievements(c *gin.Context) {
	achievements, err := h.service.ListAchievements(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, achievements)
}

// Handles GET /api/user-achievements
func (h *EngagementHandler) ListUserAchievements(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	achievements, err := h.service.ListUserAchievements(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, achievements)
}
