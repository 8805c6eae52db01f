package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"go-chi-calculator/internal/config"
	"go-chi-calculator/internal/observability"
	"go-chi-calculator/internal/server"
	"go-chi-calculator/internal/session"
)

func main() {

	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		panic(err)
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

	// Sessions
	store := session.NewStore(cfg.CalculatorOptions(), cfg.SessionTTL, cfg.SessionCleanup)

	// Metrics
	if err := initMetrics(store); err != nil {
		panic(err)
	}

	// Router
	router := server.NewRouter(store, cfg.Formatter())

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		observability.Logger.Info("server started",
			zap.String("addr", cfg.Addr),
			zap.Int("max_input_length", cfg.MaxInputLength),
			zap.String("format_mode", cfg.FormatMode),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			panic(err)
		}
	}()

	waitForShutdown(cfg, srv, store)
}

func waitForShutdown(cfg *config.Config, srv *http.Server, store *session.Store) {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Error("server shutdown failed", zap.Error(err))
	}

	// Sessions are in memory only, so whatever is left at shutdown is dropped.
	dropped := store.Len()
	if err := store.Close(); err != nil {
		observability.Logger.Warn("session store close failed", zap.Error(err))
	}
	observability.Logger.Info("server stopped", zap.Int("sessions_dropped", dropped))
}
