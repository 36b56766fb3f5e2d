package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/futig/style-backend/internal/builder"
	"go.uber.org/zap"
)

func main() {
	bot, cfg, logger, err := builder.BuildTelegramBot()
	if err != nil {
		log.Fatal("Failed to build telegram bot:", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bot.Start(ctx); err != nil {
		logger.Fatal("telegram bot failed to start", zap.Error(err))
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.TelegramCfg.ShutdownTimeout)
	defer cancel()
	if err := bot.Stop(shutdownCtx); err != nil {
		logger.Error("telegram bot did not stop cleanly", zap.Error(err))
		return
	}
	logger.Info("telegram bot stopped gracefully")
}
