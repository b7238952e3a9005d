// Package merge reconciles a freshly extracted batch of daily records
// against the previously persisted series. Replacement is channel
// complete: a channel present in the batch has all of its prior rows
// dropped, a channel absent from the batch keeps its history untouched.
package merge

import (
	"context"
	"log/slog"
	"sort"

	"mediapulse/internal/aggregate"
	"mediapulse/pkg/contracts/domain"
)

// Engine merges new batches into persisted series and recomputes the
// consolidated and per-channel rollups. Each call operates on its own
// copies of the inputs; Engine holds no per-run state.
type Engine struct {
	logger   *slog.Logger
	expected []string
}

// NewEngine creates a merge engine for a campaign's expected-channel
// list. The list drives zero-backfill of per-channel output; channels
// outside it are still merged and reported.
func NewEngine(logger *slog.Logger, expectedChannels []string) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger:   logger,
		expected: append([]string(nil), expectedChannels...),
	}
}

// Merge combines the existing series with the new batch and recomputes
// the summaries. The new batch is assumed complete for every channel it
// contains: prior rows for those channels are superseded, all other
// channels pass through unchanged and in their original order.
func (e *Engine) Merge(ctx context.Context, existing, batch []domain.DailyRecord, contract domain.ContractSummary) domain.MergeResult {
	processed := make(map[string]struct{})
	for _, r := range batch {
		processed[r.Channel] = struct{}{}
	}

	preserved := make([]domain.DailyRecord, 0, len(existing))
	discarded := 0
	for _, r := range existing {
		if _, ok := processed[r.Channel]; ok {
			discarded++
			continue
		}
		preserved = append(preserved, r)
	}

	series := make([]domain.DailyRecord, 0, len(preserved)+len(batch))
	series = append(series, preserved...)
	series = append(series, batch...)

	channels := make([]string, 0, len(processed))
	for ch := range processed {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	e.logger.InfoContext(ctx, "merged extraction batch into series",
		slog.Int("existing_rows", len(existing)),
		slog.Int("preserved_rows", len(preserved)),
		slog.Int("superseded_rows", discarded),
		slog.Int("new_rows", len(batch)),
		slog.Any("processed_channels", channels))

	return domain.MergeResult{
		Series:            series,
		ProcessedChannels: channels,
		Consolidated:      aggregate.Consolidate(series, contract),
		PerChannel:        e.perChannel(series, contract),
	}
}

// perChannel rolls the merged series up per channel. Every channel in
// the expected list gets an entry even with zero rows, so downstream
// consumers never see a missing key; channels outside the list that
// carry rows are included as well.
func (e *Engine) perChannel(series []domain.DailyRecord, contract domain.ContractSummary) domain.PerChannelMetrics {
	byChannel := make(map[string][]domain.DailyRecord)
	for _, r := range series {
		byChannel[r.Channel] = append(byChannel[r.Channel], r)
	}

	per := make(domain.PerChannelMetrics, len(e.expected))
	for _, ch := range e.expected {
		per[ch] = aggregate.Consolidate(byChannel[ch], contract)
	}
	for ch, records := range byChannel {
		if _, ok := per[ch]; !ok {
			per[ch] = aggregate.Consolidate(records, contract)
		}
	}
	return per
}
