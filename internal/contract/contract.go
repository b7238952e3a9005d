// Package contract parses the two-column key/value metadata sheet of a
// campaign into its contracted terms. Row labels are matched with the
// same alias resolution used for column headers.
package contract

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"mediapulse/internal/normalize"
	"mediapulse/internal/parse"
	"mediapulse/pkg/contracts/domain"
)

const (
	fieldInvestment  normalize.Field = "investment"
	fieldCPV         normalize.Field = "cpv_contracted"
	fieldViews       normalize.Field = "complete_views_contracted"
	fieldImpressions normalize.Field = "impressions_contracted"
	fieldPeriod      normalize.Field = "period"
	fieldStart       normalize.Field = "period_start"
	fieldEnd         normalize.Field = "period_end"
)

func aliasTable() normalize.AliasTable {
	return normalize.AliasTable{
		fieldInvestment:  {"investimento", "investment", "valor contratado", "budget total", "verba"},
		fieldCPV:         {"cpv contratado", "cpv negociado", "cpv"},
		fieldViews:       {"views completas contratadas", "views contratadas", "complete views", "views completas"},
		fieldImpressions: {"impressoes contratadas", "contracted impressions", "impressoes"},
		fieldPeriod:      {"periodo", "vigencia", "flight"},
		fieldStart:       {"inicio", "data inicial", "start"},
		fieldEnd:         {"fim", "termino", "data final", "end"},
	}
}

// periodSeparators split a single "período" value into start and end.
var periodSeparators = []string{" a ", " ate ", " até ", " - ", " à "}

// Extractor parses contract metadata sheets. Defaults cover fields the
// sheet does not resolve; every fallback is logged and reported as a
// warning so layout drift is visible to operators.
type Extractor struct {
	logger   *slog.Logger
	resolver *normalize.Resolver
	defaults domain.ContractSummary
}

// NewExtractor creates a contract extractor with per-campaign defaults.
func NewExtractor(logger *slog.Logger, defaults domain.ContractSummary) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		logger:   logger,
		resolver: normalize.NewResolver(aliasTable()),
		defaults: defaults,
	}
}

// Extract parses the key/value rows once per run. The returned summary
// is complete: unresolved fields carry the configured default and a
// warning. The summary is read-only input downstream; nothing mutates it.
func (e *Extractor) Extract(ctx context.Context, rows []domain.RawRow) (domain.ContractSummary, []domain.ExtractionWarning) {
	summary := domain.ContractSummary{}
	found := make(map[normalize.Field]bool)
	var warnings []domain.ExtractionWarning

	for _, row := range rows {
		label, value := labelAndValue(row)
		if label == "" || normalize.IsEmptyCell(value) {
			continue
		}

		switch {
		case !found[fieldInvestment] && e.resolver.ResolveLabel(label, fieldInvestment):
			summary.Investment = parse.Currency(value)
			found[fieldInvestment] = true
		case !found[fieldCPV] && e.resolver.ResolveLabel(label, fieldCPV):
			summary.CPVContracted = parse.Currency(value)
			found[fieldCPV] = true
		case !found[fieldViews] && e.resolver.ResolveLabel(label, fieldViews):
			summary.CompleteViewsContracted = parse.Integer(value)
			found[fieldViews] = true
		case !found[fieldImpressions] && e.resolver.ResolveLabel(label, fieldImpressions):
			summary.ImpressionsContracted = parse.Integer(value)
			found[fieldImpressions] = true
		case !found[fieldStart] && e.resolver.ResolveLabel(label, fieldStart):
			if t, ok := parse.Date(value); ok {
				summary.PeriodStart = t
				found[fieldStart] = true
			}
		case !found[fieldEnd] && e.resolver.ResolveLabel(label, fieldEnd):
			if t, ok := parse.Date(value); ok {
				summary.PeriodEnd = t
				found[fieldEnd] = true
			}
		case (!found[fieldStart] || !found[fieldEnd]) && e.resolver.ResolveLabel(label, fieldPeriod):
			if start, end, ok := splitPeriod(value); ok {
				summary.PeriodStart, summary.PeriodEnd = start, end
				found[fieldStart], found[fieldEnd] = true, true
			}
		}
	}

	fallback := func(field normalize.Field, apply func()) {
		if found[field] {
			return
		}
		apply()
		warnings = append(warnings, domain.ExtractionWarning{
			Kind:    domain.WarnMissingContract,
			Field:   string(field),
			Message: "contract field not found in sheet, using configured default",
		})
		e.logger.WarnContext(ctx, "contract field missing, default applied",
			slog.String("field", string(field)))
	}

	fallback(fieldInvestment, func() { summary.Investment = e.defaults.Investment })
	fallback(fieldCPV, func() { summary.CPVContracted = e.defaults.CPVContracted })
	fallback(fieldViews, func() { summary.CompleteViewsContracted = e.defaults.CompleteViewsContracted })
	fallback(fieldImpressions, func() { summary.ImpressionsContracted = e.defaults.ImpressionsContracted })
	fallback(fieldStart, func() { summary.PeriodStart = e.defaults.PeriodStart })
	fallback(fieldEnd, func() { summary.PeriodEnd = e.defaults.PeriodEnd })

	return summary, warnings
}

// labelAndValue picks the first non-empty cell as the row label and the
// next non-empty cell as its value.
func labelAndValue(row domain.RawRow) (string, string) {
	label := ""
	for i := range row.Values {
		cell := strings.TrimSpace(row.Value(i))
		if normalize.IsEmptyCell(cell) {
			continue
		}
		if label == "" {
			label = cell
			continue
		}
		return label, cell
	}
	return label, ""
}

// splitPeriod parses "01/09/2025 a 30/09/2025"-style single-cell period
// values into start and end dates.
func splitPeriod(value string) (time.Time, time.Time, bool) {
	for _, sep := range periodSeparators {
		parts := strings.SplitN(value, sep, 2)
		if len(parts) != 2 {
			continue
		}
		start, okStart := parse.Date(parts[0])
		end, okEnd := parse.Date(parts[1])
		if okStart && okEnd {
			return start, end, true
		}
	}
	return time.Time{}, time.Time{}, false
}
