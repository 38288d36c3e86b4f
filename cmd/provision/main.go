package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/training-portal/internal/bootstrap"
	"github.com/kirillkom/training-portal/internal/config"
	"github.com/kirillkom/training-portal/internal/observability/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewJSONLogger("provision", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := bootstrap.NewProvisioner(cfg, logger).Ensure(ctx)
	if err != nil {
		logger.Error("provision_failed", "error", err)
		os.Exit(1)
	}
	logger.Info("provision_done", "result", string(result))
}
