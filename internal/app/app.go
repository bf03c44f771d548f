package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/speedupsharepoint/quote-ai-backend/internal/clients/openai"
	"github.com/speedupsharepoint/quote-ai-backend/internal/clients/pinecone"
	redisclient "github.com/speedupsharepoint/quote-ai-backend/internal/clients/redis"
	"github.com/speedupsharepoint/quote-ai-backend/internal/db"
	"github.com/speedupsharepoint/quote-ai-backend/internal/handlers"
	"github.com/speedupsharepoint/quote-ai-backend/internal/observability"
	"github.com/speedupsharepoint/quote-ai-backend/internal/platform/logger"
	"github.com/speedupsharepoint/quote-ai-backend/internal/repos"
	"github.com/speedupsharepoint/quote-ai-backend/internal/server"
	"github.com/speedupsharepoint/quote-ai-backend/internal/services"
)

// App owns every long-lived collaborator. All wiring happens here, once, so
// there are no package-level singletons anywhere below.
type App struct {
	Log    *logger.Logger
	Router *gin.Engine

	cfg          Config
	cache        redisclient.Cache
	shutdownOTel func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	bootLog, err := logger.New("debug")
	if err != nil {
		return nil, fmt.Errorf("init bootstrap logger: %w", err)
	}

	cfg := LoadConfig(bootLog)

	log, err := logger.New(cfg.Mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "quote-ai-backend",
		Environment: cfg.Mode,
	})

	pg, err := db.NewPostgresService(log)
	if err != nil {
		return nil, err
	}
	if err := pg.AutoMigrateAll(); err != nil {
		return nil, err
	}

	cache, err := redisclient.NewCache(log)
	if err != nil {
		// The catalog layer degrades to database reads without a cache.
		log.Warn("Redis unavailable, catalog caching disabled", "error", err.Error())
		cache = nil
	}

	aiClient, err := openai.NewClient(log)
	if err != nil {
		return nil, err
	}
	pcClient, err := pinecone.NewFromEnv(log)
	if err != nil {
		return nil, err
	}

	catalogRepo := repos.NewCatalogRepo(pg.DB(), log)
	pricingRepo := repos.NewPricingRuleRepo(pg.DB(), log)
	callLogRepo := repos.NewAICallLogRepo(pg.DB(), log)

	catalogSvc := services.NewCatalogService(log, catalogRepo, cache)
	pricingSvc := services.NewPricingService(log, pricingRepo)
	similarSvc := services.NewSimilarQuotesService(log, aiClient, pcClient)
	generator := services.NewQuoteGenerator(log, aiClient, cfg.Generator, callLogRepo)

	quoteHandler := handlers.NewQuoteHandler(log, catalogSvc, pricingSvc, similarSvc, generator)

	router := server.NewRouter(server.RouterConfig{
		Log:          log,
		AllowOrigins: server.SplitOrigins(cfg.AllowOrigins),
		QuoteHandler: quoteHandler,
	})

	return &App{
		Log:          log,
		Router:       router,
		cfg:          cfg,
		cache:        cache,
		shutdownOTel: shutdownOTel,
	}, nil
}

func (a *App) Run() error {
	a.Log.Info("Starting HTTP server", "port", a.cfg.Port)
	return a.Router.Run(":" + a.cfg.Port)
}

func (a *App) Shutdown(ctx context.Context) {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.Log.Warn("Redis close failed", "error", err.Error())
		}
	}
	if a.shutdownOTel != nil {
		if err := a.shutdownOTel(ctx); err != nil {
			a.Log.Warn("OTel shutdown failed", "error", err.Error())
		}
	}
	a.Log.Sync()
}
