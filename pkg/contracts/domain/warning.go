package domain

import "fmt"

// WarningKind classifies a non-fatal extraction problem.
type WarningKind string

const (
	WarnUnresolvedColumn WarningKind = "unresolved_column"
	WarnUnparseableCell  WarningKind = "unparseable_cell"
	WarnMissingContract  WarningKind = "missing_contract_field"
	WarnCorruptSeries    WarningKind = "corrupt_series"
	WarnSheetUnavailable WarningKind = "sheet_unavailable"
)

// ExtractionWarning records one recoverable degradation with enough
// context for operator diagnosis: which row, which field, what raw value.
type ExtractionWarning struct {
	Kind     WarningKind `json:"kind"`
	RowIndex int         `json:"row_index,omitempty"`
	Field    string      `json:"field,omitempty"`
	RawValue string      `json:"raw_value,omitempty"`
	Message  string      `json:"message"`
}

func (w ExtractionWarning) String() string {
	if w.RowIndex > 0 {
		return fmt.Sprintf("%s: row %d field %q value %q: %s", w.Kind, w.RowIndex, w.Field, w.RawValue, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}
