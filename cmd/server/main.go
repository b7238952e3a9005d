// Command server runs the campaign extraction service: an HTTP API
// that triggers extraction runs against Google Sheets and serves the
// resulting summaries.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"mediapulse/internal/config"
	"mediapulse/internal/export"
	"mediapulse/internal/infrastructure"
	"mediapulse/internal/pipeline"
	"mediapulse/internal/sheets"
	"mediapulse/internal/store"
	transporthttp "mediapulse/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	campaigns, err := config.LoadCampaigns(cfg.Campaigns)
	if err != nil {
		return fmt.Errorf("failed to load campaigns: %w", err)
	}
	logger.Info("campaigns loaded",
		slog.Int("count", len(campaigns)),
		slog.String("file", cfg.Campaigns))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := sheets.NewGoogleSource(ctx, logger, sheets.GoogleSourceConfig{
		CredentialsFile: cfg.Sheets.CredentialsFile,
		RequestsPerSec:  cfg.Sheets.RequestsPerSec,
		Burst:           cfg.Sheets.Burst,
	})
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}

	series := store.NewCSVStore(cfg.Paths.DataDir, logger)
	summaries := store.NewSummaryWriter(cfg.Paths.DataDir, logger)
	reports := export.NewReportExporter(cfg.Paths.DataDir, logger)
	metrics := pipeline.NewMetrics(prometheus.DefaultRegisterer)
	runner := pipeline.NewRunner(logger, source, series, summaries, metrics).WithReports(reports)

	handler := transporthttp.NewExtractionHandler(runner, campaigns, summaries, cfg.Server.RunTimeout, logger)
	router := transporthttp.NewRouter(logger, handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
