// Package aggregate rolls canonical daily records up to the
// (publisher, creative) and publisher levels, and computes the
// consolidated campaign totals. All reductions are pure: aggregating the
// same input twice yields identical output.
package aggregate

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"mediapulse/internal/metrics"
	"mediapulse/internal/normalize"
	"mediapulse/pkg/contracts/domain"
)

// DateLabelFormat renders observed dates in rollup labels.
const DateLabelFormat = "02/01/2006"

// totals accumulates the summable fields of a group.
type totals struct {
	spend       decimal.Decimal
	impressions int64
	clicks      int64
	starts      int64
	completions int64
	dates       []time.Time
}

func (t *totals) add(r domain.DailyRecord) {
	t.spend = t.spend.Add(r.Spend)
	t.impressions += r.Impressions
	t.clicks += r.Clicks
	t.starts += r.Starts
	t.completions += r.Q100
	t.dates = append(t.dates, r.Date)
}

// ByPublisherCreative reduces records into one AggregatedRecord per
// (publisher, creative) pair. Ratio metrics are derived from the summed
// counts; output is sorted by spend descending with input order breaking
// ties.
func ByPublisherCreative(records []domain.DailyRecord, contract domain.ContractSummary) []domain.AggregatedRecord {
	type group struct {
		publisher string
		creative  string
		totals
	}

	index := make(map[string]*group)
	var order []*group

	for _, r := range records {
		publisher := r.EffectivePublisher()
		key := normalize.Key(publisher) + "\x00" + normalize.Key(r.Creative)
		g, ok := index[key]
		if !ok {
			g = &group{publisher: publisher, creative: r.Creative}
			index[key] = g
			order = append(order, g)
		}
		g.add(r)
	}

	out := make([]domain.AggregatedRecord, 0, len(order))
	for _, g := range order {
		out = append(out, domain.AggregatedRecord{
			Publisher:   g.publisher,
			Creative:    g.creative,
			Spend:       g.spend,
			Impressions: g.impressions,
			Clicks:      g.clicks,
			Starts:      g.starts,
			Completions: g.completions,
			CTR:         metrics.CTR(g.clicks, g.impressions),
			VTR:         metrics.VTR(g.completions, g.starts),
			CPV:         metrics.CPV(g.spend, g.completions),
			CPM:         metrics.CPM(g.spend, g.impressions),
			Pacing:      metrics.Pacing(g.spend, contract.Investment),
			DateRange:   dateRangeLabel(g.dates),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Spend.GreaterThan(out[j].Spend)
	})
	return out
}

// ByPublisher reduces records into one PublisherTotals per normalized
// publisher name, merging across creatives. Same ordering contract as
// ByPublisherCreative.
func ByPublisher(records []domain.DailyRecord, contract domain.ContractSummary) []domain.PublisherTotals {
	type group struct {
		publisher string
		totals
	}

	index := make(map[string]*group)
	var order []*group

	for _, r := range records {
		publisher := r.EffectivePublisher()
		key := normalize.Key(publisher)
		g, ok := index[key]
		if !ok {
			g = &group{publisher: publisher}
			index[key] = g
			order = append(order, g)
		}
		g.add(r)
	}

	out := make([]domain.PublisherTotals, 0, len(order))
	for _, g := range order {
		out = append(out, domain.PublisherTotals{
			Publisher:   g.publisher,
			Spend:       g.spend,
			Impressions: g.impressions,
			Clicks:      g.clicks,
			Starts:      g.starts,
			Completions: g.completions,
			CTR:         metrics.CTR(g.clicks, g.impressions),
			VTR:         metrics.VTR(g.completions, g.starts),
			CPV:         metrics.CPV(g.spend, g.completions),
			CPM:         metrics.CPM(g.spend, g.impressions),
			Pacing:      metrics.Pacing(g.spend, contract.Investment),
			DateRange:   dateRangeLabel(g.dates),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Spend.GreaterThan(out[j].Spend)
	})
	return out
}

// Consolidate computes the campaign-wide rollup of a record sequence.
func Consolidate(records []domain.DailyRecord, contract domain.ContractSummary) domain.ConsolidatedMetrics {
	var t totals
	t.spend = decimal.Zero
	for _, r := range records {
		t.add(r)
	}
	return domain.ConsolidatedMetrics{
		Spend:       t.spend,
		Impressions: t.impressions,
		Clicks:      t.clicks,
		CTR:         metrics.CTR(t.clicks, t.impressions),
		Starts:      t.starts,
		Completions: t.completions,
		VTR:         metrics.VTR(t.completions, t.starts),
		CPV:         metrics.CPV(t.spend, t.completions),
		CPM:         metrics.CPM(t.spend, t.impressions),
		Pacing:      metrics.Pacing(t.spend, contract.Investment),
	}
}

// dateRangeLabel collapses observed dates into a display label: the
// single date, or "start - end" when the group spans more than one day.
// Zero (unparsed) dates sort after real ones and are dropped from the
// label unless nothing else is present.
func dateRangeLabel(dates []time.Time) string {
	var parsed []time.Time
	for _, d := range dates {
		if !d.IsZero() {
			parsed = append(parsed, d)
		}
	}
	if len(parsed) == 0 {
		return ""
	}
	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Before(parsed[j]) })

	first := parsed[0]
	last := parsed[len(parsed)-1]
	if first.Equal(last) {
		return first.Format(DateLabelFormat)
	}
	return first.Format(DateLabelFormat) + " - " + last.Format(DateLabelFormat)
}
