package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docscan-backend/internal/bootstrap"
	"docscan-backend/internal/shared/config"
	"docscan-backend/internal/shared/server"
	"docscan-backend/internal/shared/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	defer app.Close()

	// Uploads analyze synchronously, so the write timeout must outlast
	// the OCR budget.
	srv := &http.Server{
		Addr:         server.Addr(cfg.Port),
		Handler:      app.Router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.OCRTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		telemetry.Info("server.start", map[string]any{
			"addr": srv.Addr,
			"env":  cfg.Env,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	telemetry.Info("server.shutdown", nil)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		telemetry.Error("server.shutdown_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	telemetry.Info("server.stopped", nil)
}
