package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/apierr"
	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/logger"
)

// RespondOK writes a 200 JSON body.
func RespondOK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

// RespondAPIError is the single error-to-wire translation point. Bodies stay
// opaque: validation messages are user-facing and pass through, every other
// kind maps to a fixed phrase so upstream detail never leaks.
func RespondAPIError(c *gin.Context, log *logger.Logger, err error) {
	ae := apierr.From(err)

	log.Error("Request failed",
		"path", c.FullPath(),
		"code", ae.Code,
		"status", ae.Status,
		"error", ae.Error(),
	)

	switch ae.Code {
	case apierr.CodeValidation:
		c.JSON(ae.Status, gin.H{"error": ae.Error()})
	case apierr.CodeModelTransport:
		c.JSON(ae.Status, gin.H{"error": "AI provider request failed"})
	case apierr.CodeInvalidOutput:
		c.JSON(ae.Status, gin.H{"error": "AI response failed validation"})
	case apierr.CodeUpstreamData:
		c.JSON(ae.Status, gin.H{"error": "Upstream data source unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
