package handler

import (
	"net/http"

	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/service"
	"github.com/gin-gonic/gin"
)

type LearningHandler struct {
	service *service.LearningService
}

func NewLearningHandler(service *service.LearningService) *LearningHandler {
	return &LearningHandler{service: service}
}

// Handles GET /api/lessons?classLevel=&subject=
func (h *LearningHandler) ListLessons(c *gin.Context) {
	lessons, err := h.service.ListLessons(c.Request.Context(), c.Query("classLevel"), c.Query("subject"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lessons)
}

// Handles GET /api/lessons/:id
func (h *LearningHandler) GetLesson(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	lesson, err := h.service.GetLesson(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lesson)
}

// Handles POST /api/lessons/:id/start
func (h *LearningHandler) StartLesson(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	progress, err := h.service.StartLesson(c.Request.Context(), userID, lessonID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// Handles GET /api/progress
func (h *LearningHandler) ListProgress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	progress, err := h.service.ListProgress(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// Handles PATCH /api/progress/:progressId
func (h *LearningHandler) UpdateProgress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	progressID, ok := uuidParam(c, "progressId")
	if !ok {
		return
	}

	var req models.ProgressUpdate
	if !bindJSON(c, &req) {
		return
	}

	progress, err := h.service.UpdateProgress(c.Request.Context(), userID, progressID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}
