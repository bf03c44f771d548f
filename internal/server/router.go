package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/speedupsharepoint/quote-ai-backend/internal/handlers"
	"github.com/speedupsharepoint/quote-ai-backend/internal/middleware"
	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log          *logger.Logger
	AllowOrigins []string
	QuoteHandler *handlers.QuoteHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog(cfg.Log))
	router.Use(otelgin.Middleware("quote-ai-backend"))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/health", handlers.Healthcheck)

	ai := router.Group("/ai")
	{
		ai.POST("/suggest-quote", cfg.QuoteHandler.SuggestQuote)
		ai.POST("/suggest-upsells", cfg.QuoteHandler.SuggestUpsells)
		ai.POST("/explain-quote", cfg.QuoteHandler.ExplainQuote)
		ai.POST("/optimize-pricing", cfg.QuoteHandler.OptimizePricing)
	}

	return router
}

// SplitOrigins parses a comma-separated origin list from the environment.
func SplitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
