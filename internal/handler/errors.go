package handler

import (
	"log"
	"net/http"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError writes err as {"error": "..."} with the status its kind maps to.
func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] %s %s failed: %v", c.GetString("request_id"), c.Request.Method, c.FullPath(), err)
	}

	c.JSON(status, gin.H{"error": apperr.Message(err)})
}

// currentUser returns the authenticated user id, writing a 401 when missing.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return uuid.Nil, false
	}
	return id, true
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
