// Package extract turns raw sheet rows into canonical daily records: it
// resolves columns through the campaign's alias table and parses cells
// with the locale parsers. Rows without a usable date are skipped, never
// fatal; total absence of records is the caller's fatal condition.
package extract

import (
	"context"
	"fmt"
	"log/slog"

	"mediapulse/internal/normalize"
	"mediapulse/internal/parse"
	"mediapulse/pkg/contracts/domain"
)

// RowExtractor normalizes the rows of one channel sheet.
type RowExtractor struct {
	logger   *slog.Logger
	resolver *normalize.Resolver
}

// NewRowExtractor builds an extractor over the given resolver. A nil
// resolver falls back to the default alias table.
func NewRowExtractor(logger *slog.Logger, resolver *normalize.Resolver) *RowExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if resolver == nil {
		resolver = normalize.NewResolver(nil)
	}
	return &RowExtractor{logger: logger, resolver: resolver}
}

// countFields are resolved with the integer parser.
var countFields = []struct {
	field normalize.Field
	set   func(*domain.DailyRecord, int64)
}{
	{normalize.FieldImpressions, func(r *domain.DailyRecord, v int64) { r.Impressions = v }},
	{normalize.FieldClicks, func(r *domain.DailyRecord, v int64) { r.Clicks = v }},
	{normalize.FieldStarts, func(r *domain.DailyRecord, v int64) { r.Starts = v }},
	{normalize.FieldQ25, func(r *domain.DailyRecord, v int64) { r.Q25 = v }},
	{normalize.FieldQ50, func(r *domain.DailyRecord, v int64) { r.Q50 = v }},
	{normalize.FieldQ75, func(r *domain.DailyRecord, v int64) { r.Q75 = v }},
	{normalize.FieldQ100, func(r *domain.DailyRecord, v int64) { r.Q100 = v }},
}

// ratioFields carry advisory source ratios when the sheet precomputes
// them; canonical values are re-derived downstream regardless.
var ratioFields = []struct {
	field normalize.Field
	set   func(*domain.DailyRecord, float64)
}{
	{normalize.FieldCTR, func(r *domain.DailyRecord, v float64) { r.SourceCTR = v }},
	{normalize.FieldVTR, func(r *domain.DailyRecord, v float64) { r.SourceVTR = v }},
	{normalize.FieldCPV, func(r *domain.DailyRecord, v float64) { r.SourceCPV = v }},
	{normalize.FieldCPM, func(r *domain.DailyRecord, v float64) { r.SourceCPM = v }},
}

// Records converts raw rows into canonical records for one channel.
// Degradations come back as warnings: one unresolved-column warning per
// field per batch, one unparseable-cell warning per skipped row.
func (x *RowExtractor) Records(ctx context.Context, channel string, rows []domain.RawRow) ([]domain.DailyRecord, []domain.ExtractionWarning) {
	records := make([]domain.DailyRecord, 0, len(rows))
	var warnings []domain.ExtractionWarning
	unresolved := make(map[normalize.Field]bool)

	warnUnresolved := func(row domain.RawRow, field normalize.Field) {
		if unresolved[field] {
			return
		}
		unresolved[field] = true
		warnings = append(warnings, domain.ExtractionWarning{
			Kind:     domain.WarnUnresolvedColumn,
			RowIndex: row.Index,
			Field:    string(field),
			Message:  fmt.Sprintf("no column resolved for %q on channel %s", field, channel),
		})
	}

	for _, row := range rows {
		if isBlank(row) {
			continue
		}

		rawDate, ok := x.resolver.Resolve(row, normalize.FieldDate)
		if !ok {
			warnUnresolved(row, normalize.FieldDate)
			continue
		}
		date, ok := parse.Date(rawDate)
		if !ok {
			warnings = append(warnings, domain.ExtractionWarning{
				Kind:     domain.WarnUnparseableCell,
				RowIndex: row.Index,
				Field:    string(normalize.FieldDate),
				RawValue: rawDate,
				Message:  "unparseable date, row skipped",
			})
			continue
		}

		record := domain.DailyRecord{Date: date, Channel: channel}

		if creative, ok := x.resolver.Resolve(row, normalize.FieldCreative); ok {
			record.Creative = creative
		}
		if publisher, ok := x.resolver.Resolve(row, normalize.FieldPublisher); ok {
			record.Publisher = publisher
		}

		if raw, ok := x.resolver.Resolve(row, normalize.FieldSpend); ok {
			record.Spend = parse.Currency(raw)
		} else {
			warnUnresolved(row, normalize.FieldSpend)
		}

		for _, cf := range countFields {
			if raw, ok := x.resolver.Resolve(row, cf.field); ok {
				cf.set(&record, parse.Integer(raw))
			}
		}
		for _, rf := range ratioFields {
			if raw, ok := x.resolver.Resolve(row, rf.field); ok {
				rf.set(&record, parse.Percent(raw))
			}
		}

		records = append(records, record)
	}

	x.logger.InfoContext(ctx, "extracted channel rows",
		slog.String("channel", channel),
		slog.Int("rows_in", len(rows)),
		slog.Int("records_out", len(records)),
		slog.Int("warnings", len(warnings)))

	return records, warnings
}

func isBlank(row domain.RawRow) bool {
	for _, v := range row.Values {
		if !normalize.IsEmptyCell(v) {
			return false
		}
	}
	return true
}
