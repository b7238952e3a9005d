// Package pipeline orchestrates one extraction run: fetch the campaign's
// sheets, normalize rows into canonical records, merge them into the
// persisted series, and write the refreshed artifacts. A run either
// completes and persists, or fails and leaves the previous series
// untouched.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"mediapulse/internal/aggregate"
	"mediapulse/internal/config"
	"mediapulse/internal/contract"
	apperrors "mediapulse/internal/errors"
	"mediapulse/internal/export"
	"mediapulse/internal/extract"
	"mediapulse/internal/infrastructure"
	"mediapulse/internal/merge"
	"mediapulse/internal/normalize"
	"mediapulse/internal/sheets"
	"mediapulse/internal/store"
	"mediapulse/pkg/contracts/domain"
)

// RunReport is what a completed run hands back to the caller: the
// refreshed summaries plus every degradation that occurred on the way.
type RunReport struct {
	RunID             string                     `json:"run_id"`
	Campaign          string                     `json:"campaign"`
	Records           int                        `json:"records"`
	ProcessedChannels []string                   `json:"processed_channels"`
	Consolidated      domain.ConsolidatedMetrics `json:"consolidated"`
	PerChannel        domain.PerChannelMetrics   `json:"per_channel"`
	ByPlacement       []domain.AggregatedRecord  `json:"by_placement"`
	ByPublisher       []domain.PublisherTotals   `json:"by_publisher"`
	Contract          domain.ContractSummary     `json:"contract"`
	Warnings          []domain.ExtractionWarning `json:"warnings,omitempty"`
	Duration          time.Duration              `json:"duration"`
}

// Runner executes extraction runs. Concurrent runs for different
// campaigns proceed independently; runs for the same campaign key are
// collapsed through singleflight so the persisted series is never
// written by two runs at once.
type Runner struct {
	logger    *slog.Logger
	source    sheets.Source
	series    store.SeriesStore
	summaries *store.SummaryWriter
	reports   *export.ReportExporter
	metrics   *Metrics
	group     singleflight.Group
}

// NewRunner wires a runner from its collaborators. metrics may be nil.
func NewRunner(logger *slog.Logger, source sheets.Source, series store.SeriesStore, summaries *store.SummaryWriter, metrics *Metrics) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		logger:    logger,
		source:    source,
		series:    series,
		summaries: summaries,
		metrics:   metrics,
	}
}

// WithReports makes the runner write the CSV report files after each
// successful run.
func (r *Runner) WithReports(reports *export.ReportExporter) *Runner {
	r.reports = reports
	return r
}

// Run executes one extraction for the campaign. Callers triggering the
// same campaign concurrently share a single run and its result.
func (r *Runner) Run(ctx context.Context, campaign config.Campaign) (*RunReport, error) {
	v, err, _ := r.group.Do(campaign.Key, func() (interface{}, error) {
		return r.run(ctx, campaign)
	})
	if err != nil {
		return nil, err
	}
	return v.(*RunReport), nil
}

func (r *Runner) run(ctx context.Context, campaign config.Campaign) (*RunReport, error) {
	start := time.Now()
	ctx = infrastructure.EnsureTraceID(ctx)
	runID := infrastructure.GetTraceID(ctx)
	logger := r.logger.With(
		slog.String("campaign", campaign.Key),
		slog.String("run_id", runID))

	logger.InfoContext(ctx, "starting extraction run",
		slog.Int("sheets", len(campaign.Sheets)))

	var warnings []domain.ExtractionWarning
	warn := func(w domain.ExtractionWarning) {
		warnings = append(warnings, w)
		r.metrics.observeWarning(campaign.Key, string(w.Kind))
	}

	resolver := normalize.NewResolver(normalize.DefaultAliasTable().Merge(campaign.Aliases))
	extractor := extract.NewRowExtractor(logger, resolver)

	contractSummary := r.extractContract(ctx, logger, campaign, warn)

	batch, err := r.extractBatch(ctx, logger, campaign, extractor, warn)
	if err != nil {
		r.metrics.observeRun(campaign.Key, "failed", time.Since(start).Seconds(), 0)
		return nil, err
	}

	existing, err := r.series.Load(ctx, campaign.Key)
	if err != nil {
		// Accepted degradation: unprocessed channels lose history, but
		// the run continues. Loudly.
		logger.ErrorContext(ctx, "persisted series unreadable, proceeding as empty",
			slog.String("error", err.Error()))
		warn(domain.ExtractionWarning{
			Kind:    domain.WarnCorruptSeries,
			Message: fmt.Sprintf("persisted series unreadable, treated as empty: %v", err),
		})
		existing = nil
	}

	engine := merge.NewEngine(logger, campaign.ExpectedChannelList())
	result := engine.Merge(ctx, existing, batch, contractSummary)

	if err := r.series.Save(ctx, campaign.Key, result.Series); err != nil {
		r.metrics.observeRun(campaign.Key, "failed", time.Since(start).Seconds(), len(batch))
		return nil, fmt.Errorf("failed to persist merged series for %s: %w", campaign.Key, err)
	}

	byPlacement := aggregate.ByPublisherCreative(result.Series, contractSummary)
	byPublisher := aggregate.ByPublisher(result.Series, contractSummary)

	if r.summaries != nil {
		if err := r.summaries.Write(ctx, store.SummaryArtifact{
			Campaign:     campaign.Key,
			Consolidated: result.Consolidated,
			PerChannel:   result.PerChannel,
			ByPlacement:  byPlacement,
			ByPublisher:  byPublisher,
			Contract:     contractSummary,
			Warnings:     warnings,
		}); err != nil {
			r.metrics.observeRun(campaign.Key, "failed", time.Since(start).Seconds(), len(batch))
			return nil, fmt.Errorf("failed to write summary for %s: %w", campaign.Key, err)
		}
	}

	if r.reports != nil {
		if err := r.reports.WritePlacements(ctx, campaign.Key, byPlacement); err != nil {
			r.metrics.observeRun(campaign.Key, "failed", time.Since(start).Seconds(), len(batch))
			return nil, fmt.Errorf("failed to write placement report for %s: %w", campaign.Key, err)
		}
		if err := r.reports.WritePublishers(ctx, campaign.Key, byPublisher); err != nil {
			r.metrics.observeRun(campaign.Key, "failed", time.Since(start).Seconds(), len(batch))
			return nil, fmt.Errorf("failed to write publisher report for %s: %w", campaign.Key, err)
		}
	}

	duration := time.Since(start)
	r.metrics.observeRun(campaign.Key, "success", duration.Seconds(), len(batch))
	logger.InfoContext(ctx, "extraction run complete",
		slog.Int("records", len(batch)),
		slog.Int("series_rows", len(result.Series)),
		slog.Int("warnings", len(warnings)),
		slog.Duration("duration", duration))

	return &RunReport{
		RunID:             runID,
		Campaign:          campaign.Key,
		Records:           len(batch),
		ProcessedChannels: result.ProcessedChannels,
		Consolidated:      result.Consolidated,
		PerChannel:        result.PerChannel,
		ByPlacement:       byPlacement,
		ByPublisher:       byPublisher,
		Contract:          contractSummary,
		Warnings:          warnings,
		Duration:          duration,
	}, nil
}

// extractContract fetches and parses the contract metadata sheet. The
// sheet is optional: any failure falls back to the configured defaults
// with a warning, never aborting the run.
func (r *Runner) extractContract(ctx context.Context, logger *slog.Logger, campaign config.Campaign, warn func(domain.ExtractionWarning)) domain.ContractSummary {
	extractor := contract.NewExtractor(logger, campaign.Contract.ToSummary())

	if campaign.ContractSheet == "" {
		return campaign.Contract.ToSummary()
	}

	rows, err := r.source.Rows(ctx, sheets.Ref{Document: campaign.Document, Sheet: campaign.ContractSheet})
	if err != nil {
		logger.WarnContext(ctx, "contract sheet unavailable, using defaults",
			slog.String("sheet", campaign.ContractSheet),
			slog.String("error", err.Error()))
		warn(domain.ExtractionWarning{
			Kind:    domain.WarnMissingContract,
			Field:   campaign.ContractSheet,
			Message: fmt.Sprintf("contract sheet unavailable: %v", err),
		})
		return campaign.Contract.ToSummary()
	}

	summary, contractWarnings := extractor.Extract(ctx, rows)
	for _, w := range contractWarnings {
		warn(w)
	}
	return summary
}

// extractBatch fetches every channel sheet and normalizes its rows.
// A missing primary sheet, or a primary sheet yielding zero extractable
// rows, is fatal; missing secondary sheets only shrink the
// processed-channel set, preserving those channels' persisted history.
func (r *Runner) extractBatch(ctx context.Context, logger *slog.Logger, campaign config.Campaign, extractor *extract.RowExtractor, warn func(domain.ExtractionWarning)) ([]domain.DailyRecord, error) {
	primary := campaign.PrimarySheet()
	var batch []domain.DailyRecord
	primaryRecords := 0

	for _, cs := range campaign.Sheets {
		rows, err := r.source.Rows(ctx, sheets.Ref{Document: campaign.Document, Sheet: cs.Sheet})
		if err != nil {
			if cs.Channel == primary.Channel && cs.Sheet == primary.Sheet {
				if errors.Is(err, sheets.ErrSheetNotFound) {
					return nil, apperrors.NewSourceError(
						fmt.Sprintf("primary sheet %q missing for campaign %q", cs.Sheet, campaign.Key), err)
				}
				return nil, apperrors.NewSourceError(
					fmt.Sprintf("failed to fetch primary sheet %q for campaign %q", cs.Sheet, campaign.Key), err)
			}
			logger.WarnContext(ctx, "channel sheet unavailable, channel left unprocessed",
				slog.String("channel", cs.Channel),
				slog.String("sheet", cs.Sheet),
				slog.String("error", err.Error()))
			warn(domain.ExtractionWarning{
				Kind:    domain.WarnSheetUnavailable,
				Field:   cs.Channel,
				Message: fmt.Sprintf("sheet %q unavailable, channel %s left unprocessed: %v", cs.Sheet, cs.Channel, err),
			})
			continue
		}

		records, extractWarnings := extractor.Records(ctx, cs.Channel, rows)
		for _, w := range extractWarnings {
			warn(w)
		}
		if cs.Channel == primary.Channel && cs.Sheet == primary.Sheet {
			primaryRecords = len(records)
		}
		batch = append(batch, records...)
	}

	// A stale or emptied primary sheet must never pass as a clean run,
	// even when secondary channels still carry data.
	if primaryRecords == 0 {
		return nil, apperrors.NewNoDataError(campaign.Key, primary.Sheet)
	}
	return batch, nil
}
