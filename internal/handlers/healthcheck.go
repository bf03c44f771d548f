package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const serviceName = "quote-ai-backend"

// Healthcheck reports liveness only; it touches no collaborator.
func Healthcheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}
