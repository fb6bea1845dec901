package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskagent/internal/di"
	"taskagent/internal/infrastructure/env"
	"taskagent/internal/infrastructure/httpapi"
	"taskagent/internal/infrastructure/logger"
)

func main() {
	envService := env.NewEnvService()

	logCfg := logger.DefaultConfig()
	logCfg.Level = envService.GetDefault("LOG_LEVEL", "info")
	logCfg.Format = envService.GetDefault("LOG_FORMAT", "json")
	logCfg.LogFile = envService.Get("LOG_FILE")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := di.NewContainer(ctx, di.Config{
		Logger:        logCfg,
		DatabaseURL:   envService.Get("DATABASE_URL"),
		ScreenshotDir: envService.Get("SCREENSHOT_DIR"),
		Workers:       envService.GetInt("WORKERS", 4),
	})
	if err != nil {
		log.Fatalf("initialization failed: %v", err)
	}
	defer container.Close()

	// Tasks abandoned by a previous crashed instance become runnable again.
	staleAfter := envService.GetDuration("STALE_TASK_AFTER", 30*time.Minute)
	if n, err := container.Store.ResetStale(ctx, staleAfter); err != nil {
		container.Logger.Warn("stale task reset failed", "error", err)
	} else if n > 0 {
		container.Logger.Info("reset stale tasks on startup", "count", n)
	}

	api := httpapi.NewServer(container.Pool, container.Store, container.Logger)
	addr := envService.GetDefault("LISTEN_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Router("agentd"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		container.Logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			container.Logger.Error("server stopped", "error", err)
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		container.Logger.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Warn("graceful shutdown interrupted", "error", err)
	}
}
