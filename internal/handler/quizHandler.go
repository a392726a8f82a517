package handler

import (
	"net/http"

	"github.com/aman-churiwal/tutor-gateway/internal/quiz"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QuizHandler struct {
	service *quiz.Service
}

func NewQuizHandler(service *quiz.Service) *QuizHandler {
	return &QuizHandler{service: service}
}

// Handles GET /api/quizzes/:lessonId
func (h *QuizHandler) GetQuizzes(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	lessonID, ok := uuidParam(c, "lessonId")
	if !ok {
		return
	}

	quizzes, err := h.service.SelectQuizzes(c.Request.Context(), userID, lessonID, quiz.DefaultLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, quizzes)
}

// Handles POST /api/quiz-results
func (h *QuizHandler) SubmitResult(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req quiz.SubmitRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.SubmitResult(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Handles GET /api/quiz-results?lessonId=
func (h *QuizHandler) ListResults(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var lessonID *uuid.UUID
	if raw := c.Query("lessonId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lessonId"})
			return
		}
		lessonID = &id
	}

	results, err := h.service.ListResults(c.Request.Context(), userID, lessonID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
