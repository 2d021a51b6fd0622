package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/smartbites/backend/config"
	"github.com/smartbites/backend/internal/logger"
	"github.com/smartbites/backend/internal/server"
)

func main() {
	if config.GetEnvironment().IsDevelopment() {
		// a missing .env is fine outside local development
		_ = godotenv.Load()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		Development: cfg.App.Environment.IsDevelopment(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	app, err := server.NewApp(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("failed to initialise application", zap.Error(err))
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("starting server",
			zap.String("addr", cfg.Server.Addr()),
			zap.String("environment", string(cfg.App.Environment)),
		)
		errChan <- app.Server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Error("server error", zap.Error(err))
		}
	case sig := <-quit:
		log.Info("received signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := app.Server.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	if err := app.Close(); err != nil {
		log.Error("failed to release resources", zap.Error(err))
	}
	log.Info("server stopped")
}
