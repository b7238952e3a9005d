package domain

import "github.com/shopspring/decimal"

// AggregatedRecord is the (publisher, creative) level rollup of daily
// records: raw counts summed, ratio metrics re-derived from the sums.
type AggregatedRecord struct {
	Publisher   string          `json:"publisher"`
	Creative    string          `json:"creative"`
	Spend       decimal.Decimal `json:"spend"`
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Starts      int64           `json:"starts"`
	Completions int64           `json:"completions"`
	CTR         float64         `json:"ctr"`
	VTR         float64         `json:"vtr"`
	CPV         float64         `json:"cpv"`
	CPM         float64         `json:"cpm"`
	Pacing      float64         `json:"pacing"`

	// DateRange is a display label: the single observed date, or
	// "start - end" when the rollup spans more than one day.
	DateRange string `json:"date_range"`
}

// PublisherTotals is the publisher-level rollup, merged across creatives.
type PublisherTotals struct {
	Publisher   string          `json:"publisher"`
	Spend       decimal.Decimal `json:"spend"`
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Starts      int64           `json:"starts"`
	Completions int64           `json:"completions"`
	CTR         float64         `json:"ctr"`
	VTR         float64         `json:"vtr"`
	CPV         float64         `json:"cpv"`
	CPM         float64         `json:"cpm"`
	Pacing      float64         `json:"pacing"`
	DateRange   string          `json:"date_range"`
}
