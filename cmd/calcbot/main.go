package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/session"
	"go-chi-calculator/internal/telegram"
)

func main() {

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if cfg.TelegramToken == "" {
		panic("CALC_TELEGRAM_TOKEN is required")
	}

	// Logger
	err = observability.InitLogger()
	if err != nil {
		panic(err)
	}
	defer observability.SyncLogger()

	// Tracing, metrics and log export
	otelShutdown, err := observability.Setup(ctx, cfg.OTelEnabled)
	if err != nil {
		panic(err)
	}
	defer otelShutdown(ctx)

	api, err := telegram.Connect(cfg.TelegramToken)
	if err != nil {
		observability.Logger.Fatal("failed to connect telegram", zap.Error(err))
	}

	store := session.NewStore(cfg.CalculatorOptions(), cfg.SessionTTL, cfg.SessionCleanup)
	bot := telegram.New(api, store, cfg.TelegramTimeout, cfg.SessionTTL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		observability.Logger.Info("telegram bot started", zap.String("bot", api.Self.UserName))
		if err := bot.Run(); !errors.Is(err, telegram.ErrClosed) {
			observability.Logger.Error("telegram bot failed", zap.Error(err))
		}
		quit <- os.Interrupt
	}()

	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	observability.Logger.Info("stopping telegram bot")
	if err := bot.Shutdown(shutdownCtx); err != nil {
		observability.Logger.Warn("graceful shutdown incomplete, dropping sessions", zap.Error(err))
		_ = store.Close()
	}
	observability.Logger.Info("telegram bot stopped")
}
