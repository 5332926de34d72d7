package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/tournament-results/app"
	"github.com/Black-And-White-Club/tournament-results/app/observability/attr"
	"github.com/Black-And-White-Club/tournament-results/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.Initialize(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		application.Observability.Logger.Error("Application stopped with error", attr.Error(err))
		os.Exit(1)
	}

	application.Observability.Logger.Info("Application shut down gracefully")
}
