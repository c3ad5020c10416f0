package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"NewsHunter/internal/api"
	"NewsHunter/internal/app"
	"NewsHunter/internal/config"
	"NewsHunter/internal/logging"
)

func main() {
	configFlag := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	_ = godotenv.Load()

	var cfg config.Config
	if *configFlag != "" {
		cfg = config.LoadPath(*configFlag)
	} else {
		cfg = config.Load()
	}
	logger := logging.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("shutdown cleanup failed", "error", err)
		}
	}()

	resolver, err := application.Resolver()
	if err != nil {
		logger.Error("session resolver unavailable", "error", err)
		os.Exit(1)
	}

	store := application.Store()
	router := api.NewRouter(api.NewHandler(store, store, resolver), cfg.API.AllowedOrigins)

	logger.Info("query api listening", "addr", cfg.API.Addr)
	if err := application.ServeAPI(ctx, router); err != nil {
		logger.Error("api server stopped", "error", err)
		os.Exit(1)
	}
}
