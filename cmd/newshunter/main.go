package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"NewsHunter/internal/app"
	"NewsHunter/internal/config"
	"NewsHunter/internal/hunt"
	"NewsHunter/internal/logging"
	"NewsHunter/internal/session"
)

const (
	exitOK              = 0
	exitHuntFailed      = 1
	exitSessionResolver = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		dateFlag   = flag.String("date", "", "hunt an explicit trading date (YYYY-MM-DD) instead of the current session")
		configFlag = flag.String("config", "", "path to the YAML config file")
		daemonFlag = flag.Bool("daemon", false, "keep hunting on the configured interval")
	)
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

	target := hunt.Now()
	if *dateFlag != "" {
		date, err := session.ParseDate(*dateFlag)
		if err != nil {
			logger.Error("invalid -date value", "value", *dateFlag, "error", err)
			return exitSessionResolver
		}
		target = hunt.On(date)
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return exitHuntFailed
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("shutdown cleanup failed", "error", err)
		}
	}()

	if *daemonFlag {
		if err := application.RunDaemon(ctx); err != nil {
			logger.Error("daemon stopped", "error", err)
			return exitHuntFailed
		}
		return exitOK
	}

	summary, err := application.HuntOnce(ctx, target)
	if err != nil {
		if errors.Is(err, session.ErrInvalidDate) || errors.Is(err, session.ErrCalendarUnavailable) {
			logger.Error("session resolution failed", "error", err)
			return exitSessionResolver
		}
		logger.Error("hunt aborted", "error", err)
		return exitHuntFailed
	}
	if !summary.Success {
		logger.Error("hunt finished with terminal failures", "run_id", summary.RunID)
		return exitHuntFailed
	}
	return exitOK
}
