package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	apperrors "mediapulse/internal/errors"
	"mediapulse/pkg/contracts/domain"
)

// SummaryArtifact is the JSON document written after each successful
// run: the consolidated and per-channel rollups plus the detail tables
// the report pages render from.
type SummaryArtifact struct {
	Campaign     string                     `json:"campaign"`
	GeneratedAt  string                     `json:"generated_at"`
	Format       string                     `json:"format"`
	Consolidated domain.ConsolidatedMetrics `json:"consolidated"`
	PerChannel   domain.PerChannelMetrics   `json:"per_channel"`
	ByPlacement  []domain.AggregatedRecord  `json:"by_placement"`
	ByPublisher  []domain.PublisherTotals   `json:"by_publisher"`
	Contract     domain.ContractSummary     `json:"contract"`
	Warnings     []domain.ExtractionWarning `json:"warnings,omitempty"`
}

// SummaryWriter persists summary artifacts next to the series files.
type SummaryWriter struct {
	dir    string
	logger *slog.Logger
}

// NewSummaryWriter creates a summary writer rooted at dir.
func NewSummaryWriter(dir string, logger *slog.Logger) *SummaryWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryWriter{dir: dir, logger: logger}
}

func (w *SummaryWriter) path(campaign string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s_summary.json", campaign))
}

// Write replaces the campaign's summary artifact.
func (w *SummaryWriter) Write(ctx context.Context, artifact SummaryArtifact) error {
	artifact.GeneratedAt = time.Now().Format(time.RFC3339)
	artifact.Format = "campaign_summary_v1"

	path := w.path(artifact.Campaign)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create summary directory", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create summary file", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(artifact); err != nil {
		return apperrors.NewStorageError("failed to encode summary", err)
	}

	w.logger.InfoContext(ctx, "wrote summary artifact",
		slog.String("campaign", artifact.Campaign),
		slog.String("path", path))

	return nil
}

// Read loads the latest summary artifact for a campaign.
func (w *SummaryWriter) Read(ctx context.Context, campaign string) (*SummaryArtifact, error) {
	data, err := os.ReadFile(w.path(campaign))
	if os.IsNotExist(err) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("summary for campaign %q", campaign))
	}
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read summary file", err)
	}

	var artifact SummaryArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, apperrors.NewStorageError("failed to decode summary file", err)
	}
	return &artifact, nil
}
