package app

import (
	"time"

	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/logger"
	"github.com/speedupsharepoint/quote-ai-backend/internal/services"
	"github.com/speedupsharepoint/quote-ai-backend/internal/types"
	"github.com/speedupsharepoint/quote-ai-backend/internal/utils"
)

type Config struct {
	Mode         string // "debug" or "release"; drives gin and zap
	Port         string
	AllowOrigins string
	Generator    services.GeneratorConfig
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Mode:         utils.GetEnv("APP_MODE", "debug", log),
		Port:         utils.GetEnv("PORT", "8080", log),
		AllowOrigins: utils.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000", log),
		Generator: services.GeneratorConfig{
			TaxRate:     utils.GetEnvAsFloat("TAX_RATE", types.DefaultTaxRate, log),
			CostRatio:   utils.GetEnvAsFloat("COST_RATIO", types.DefaultCostRatio, log),
			MaxAttempts: utils.GetEnvAsInt("GENERATION_MAX_ATTEMPTS", 3, log),
			BackoffBase: time.Duration(utils.GetEnvAsInt("GENERATION_BACKOFF_BASE_SECONDS", 2, log)) * time.Second,
			BackoffCap:  time.Duration(utils.GetEnvAsInt("GENERATION_BACKOFF_CAP_SECONDS", 10, log)) * time.Second,
		},
	}
}
