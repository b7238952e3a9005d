// Command extractor runs a single extraction for one campaign and
// prints the run report as JSON. It reads either the campaign's Google
// Sheets document or a local XLSX workbook (-xlsx), which makes it the
// tool of choice for backfills and for verifying a workbook before it
// goes live.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"mediapulse/internal/config"
	"mediapulse/internal/export"
	"mediapulse/internal/infrastructure"
	"mediapulse/internal/pipeline"
	"mediapulse/internal/sheets"
	"mediapulse/internal/store"
)

func main() {
	var (
		campaignKey = flag.String("campaign", "", "campaign key to extract (required)")
		xlsxPath    = flag.String("xlsx", "", "read channel sheets from this local XLSX workbook instead of Google Sheets")
		dataDir     = flag.String("data", "", "override data directory for persisted series and summaries")
		quiet       = flag.Bool("quiet", false, "suppress the JSON report on stdout")
	)
	flag.Parse()

	if *campaignKey == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*campaignKey, *xlsxPath, *dataDir, *quiet); err != nil {
		fmt.Fprintf(os.Stderr, "extraction failed: %v\n", err)
		os.Exit(1)
	}
}

func run(campaignKey, xlsxPath, dataDir string, quiet bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if dataDir != "" {
		cfg.Paths.DataDir = dataDir
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
	campaign, ok := campaigns[campaignKey]
	if !ok {
		return fmt.Errorf("unknown campaign %q in %s", campaignKey, cfg.Campaigns)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Server.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Server.RunTimeout)
		defer cancel()
	}

	var source sheets.Source
	if xlsxPath != "" {
		// Local workbooks address sheets by file path in place of the
		// document ID.
		campaign.Document = xlsxPath
		source = sheets.NewXLSXSource(logger)
	} else {
		source, err = sheets.NewGoogleSource(ctx, logger, sheets.GoogleSourceConfig{
			CredentialsFile: cfg.Sheets.CredentialsFile,
			RequestsPerSec:  cfg.Sheets.RequestsPerSec,
			Burst:           cfg.Sheets.Burst,
		})
		if err != nil {
			return fmt.Errorf("failed to create sheets client: %w", err)
		}
	}

	series := store.NewCSVStore(cfg.Paths.DataDir, logger)
	summaries := store.NewSummaryWriter(cfg.Paths.DataDir, logger)
	reports := export.NewReportExporter(cfg.Paths.DataDir, logger)
	runner := pipeline.NewRunner(logger, source, series, summaries, nil).WithReports(reports)

	report, err := runner.Run(ctx, campaign)
	if err != nil {
		return err
	}

	logger.Info("extraction complete",
		slog.String("campaign", campaign.Key),
		slog.Int("records", report.Records),
		slog.Int("warnings", len(report.Warnings)))

	if !quiet {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	}
	return nil
}
