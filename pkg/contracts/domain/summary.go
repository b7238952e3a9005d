package domain

import "github.com/shopspring/decimal"

// ConsolidatedMetrics is the campaign-wide rollup of the merged series.
// JSON keys keep the report labels the dashboards were built around, so
// the persistence adapter reproduces them byte for byte.
type ConsolidatedMetrics struct {
	Spend       decimal.Decimal `json:"Budget Utilizado (R$)"`
	Impressions int64           `json:"Impressões"`
	Clicks      int64           `json:"Cliques"`
	CTR         float64         `json:"CTR (%)"`
	Starts      int64           `json:"Início de Vídeo"`
	Completions int64           `json:"Views Completas (100%)"`
	VTR         float64         `json:"VTR (%)"`
	CPV         float64         `json:"CPV (R$)"`
	CPM         float64         `json:"CPM (R$)"`
	Pacing      float64         `json:"Pacing (%)"`
}

// PerChannelMetrics maps every expected channel of a campaign to its
// rollup. Channels with no rows in the merged series are present with a
// zero-valued entry so consumers never see a missing key.
type PerChannelMetrics map[string]ConsolidatedMetrics

// MergeResult is the full output of one merge operation.
type MergeResult struct {
	// Series is the merged daily-record sequence: preserved channels'
	// history plus the new batch, in that order.
	Series []DailyRecord `json:"series"`

	// ProcessedChannels lists the channels the new batch replaced,
	// sorted for deterministic output.
	ProcessedChannels []string `json:"processed_channels"`

	Consolidated ConsolidatedMetrics `json:"consolidated"`
	PerChannel   PerChannelMetrics   `json:"per_channel"`
}
