package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractSummary holds the contracted campaign terms parsed from the
// key/value metadata sheet. It is read-only input to the engine: the
// investment and contracted volumes serve as pacing denominators and are
// never mutated by aggregation or merge.
type ContractSummary struct {
	Investment              decimal.Decimal `json:"investment"`
	CPVContracted           decimal.Decimal `json:"cpv_contracted"`
	CompleteViewsContracted int64           `json:"complete_views_contracted"`
	ImpressionsContracted   int64           `json:"impressions_contracted"`
	PeriodStart             time.Time       `json:"period_start"`
	PeriodEnd               time.Time       `json:"period_end"`
}
