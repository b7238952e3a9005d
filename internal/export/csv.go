// Package export renders the aggregated rollups into the CSV report
// files analysts pull into spreadsheets. Currency columns keep the
// source locale format; files carry a UTF-8 BOM so Excel shows accents.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	apperrors "mediapulse/internal/errors"
	"mediapulse/internal/parse"
	"mediapulse/pkg/contracts/domain"
)

var placementHeaders = []string{
	"Publisher", "Criativo", "Investimento", "Impressões", "Cliques",
	"CTR (%)", "Início de Vídeo", "Views Completas", "VTR (%)",
	"CPV (R$)", "CPM (R$)", "Pacing (%)", "Período",
}

var publisherHeaders = []string{
	"Publisher", "Investimento", "Impressões", "Cliques", "CTR (%)",
	"Início de Vídeo", "Views Completas", "VTR (%)",
	"CPV (R$)", "CPM (R$)", "Pacing (%)", "Período",
}

// ReportExporter writes the per-campaign report CSVs under a data
// directory.
type ReportExporter struct {
	dir    string
	logger *slog.Logger
}

// NewReportExporter creates an exporter rooted at dir.
func NewReportExporter(dir string, logger *slog.Logger) *ReportExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportExporter{dir: dir, logger: logger}
}

// WritePlacements writes the (publisher, creative) rollup report.
func (e *ReportExporter) WritePlacements(ctx context.Context, campaign string, rollup []domain.AggregatedRecord) error {
	records := make([][]string, 0, len(rollup))
	for _, g := range rollup {
		records = append(records, []string{
			g.Publisher,
			g.Creative,
			parse.FormatCurrency(g.Spend),
			strconv.FormatInt(g.Impressions, 10),
			strconv.FormatInt(g.Clicks, 10),
			formatRatio(g.CTR),
			strconv.FormatInt(g.Starts, 10),
			strconv.FormatInt(g.Completions, 10),
			formatRatio(g.VTR),
			formatRatio(g.CPV),
			formatRatio(g.CPM),
			formatRatio(g.Pacing),
			g.DateRange,
		})
	}
	return e.write(ctx, fmt.Sprintf("%s_placements.csv", campaign), placementHeaders, records)
}

// WritePublishers writes the publisher rollup report.
func (e *ReportExporter) WritePublishers(ctx context.Context, campaign string, rollup []domain.PublisherTotals) error {
	records := make([][]string, 0, len(rollup))
	for _, g := range rollup {
		records = append(records, []string{
			g.Publisher,
			parse.FormatCurrency(g.Spend),
			strconv.FormatInt(g.Impressions, 10),
			strconv.FormatInt(g.Clicks, 10),
			formatRatio(g.CTR),
			strconv.FormatInt(g.Starts, 10),
			strconv.FormatInt(g.Completions, 10),
			formatRatio(g.VTR),
			formatRatio(g.CPV),
			formatRatio(g.CPM),
			formatRatio(g.Pacing),
			g.DateRange,
		})
	}
	return e.write(ctx, fmt.Sprintf("%s_publishers.csv", campaign), publisherHeaders, records)
}

func (e *ReportExporter) write(ctx context.Context, name string, headers []string, records [][]string) error {
	path := filepath.Join(e.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create report directory", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewStorageError("failed to create report file", err)
	}
	defer file.Close()

	// UTF-8 BOM so Excel recognizes the encoding
	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return apperrors.NewStorageError("failed to write BOM", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(headers); err != nil {
		return apperrors.NewStorageError("failed to write report headers", err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write report row %d", i), err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewStorageError("failed to flush report file", err)
	}

	e.logger.InfoContext(ctx, "wrote report csv",
		slog.String("path", path),
		slog.Int("rows", len(records)))

	return nil
}

// formatRatio renders derived ratios with the comma decimal the report
// consumers expect.
func formatRatio(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	out := []byte(s)
	for i := range out {
		if out[i] == '.' {
			out[i] = ','
		}
	}
	return string(out)
}
