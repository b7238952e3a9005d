package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRow is one data row from a source sheet. Headers keep the literal,
// untrusted header text in column order; Values is index-aligned with
// Headers. Column order matters: when two headers match the same alias,
// the leftmost column wins.
type RawRow struct {
	Index   int      `json:"index"` // 1-based row number in the source sheet
	Headers []string `json:"headers"`
	Values  []string `json:"values"`
}

// Value returns the cell at column i, or "" when the row is ragged.
func (r RawRow) Value(i int) string {
	if i < 0 || i >= len(r.Values) {
		return ""
	}
	return r.Values[i]
}

// DailyRecord is the canonical per-day, per-creative performance record
// that every heterogeneous source row normalizes into.
type DailyRecord struct {
	Date        time.Time       `json:"date"`
	Channel     string          `json:"channel" validate:"required"`
	Creative    string          `json:"creative"`
	Publisher   string          `json:"publisher"`
	Spend       decimal.Decimal `json:"spend"`
	Impressions int64           `json:"impressions" validate:"min=0"`
	Clicks      int64           `json:"clicks" validate:"min=0"`
	Starts      int64           `json:"starts" validate:"min=0"`
	Q25         int64           `json:"q25" validate:"min=0"`
	Q50         int64           `json:"q50" validate:"min=0"`
	Q75         int64           `json:"q75" validate:"min=0"`
	Q100        int64           `json:"q100" validate:"min=0"`

	// Ratios as reported by the source. Advisory only: canonical values
	// are always re-derived from the raw counts.
	SourceCTR float64 `json:"source_ctr,omitempty"`
	SourceCPV float64 `json:"source_cpv,omitempty"`
	SourceCPM float64 `json:"source_cpm,omitempty"`
	SourceVTR float64 `json:"source_vtr,omitempty"`
}

// PublisherFallback is used when a row carries neither a publisher nor a
// creative to borrow the name from.
const PublisherFallback = "Desconhecido"

// EffectivePublisher returns the publisher, falling back to the creative
// name and then to PublisherFallback.
func (d DailyRecord) EffectivePublisher() string {
	if d.Publisher != "" {
		return d.Publisher
	}
	if d.Creative != "" {
		return d.Creative
	}
	return PublisherFallback
}
