package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/speedupsharepoint/quote-ai-backend/internal/app"
)

func main() {
	// Local development convenience; deployed environments set real env vars.
	_ = godotenv.Load()

	ctx := context.Background()
	a, err := app.New(ctx)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Shutdown(shutdownCtx)
	}()

	if err := a.Run(); err != nil {
		a.Log.Fatal("HTTP server exited", "error", err.Error())
	}
}
