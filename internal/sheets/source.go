// Package sheets provides the tabular-source collaborators the engine
// reads from: Google Sheets ranges and local XLSX workbook drops. Both
// return the same untyped row shape; all interpretation happens in the
// extraction layer.
package sheets

import (
	"context"
	"errors"
	"fmt"

	"mediapulse/pkg/contracts/domain"
)

// ErrSheetNotFound marks the fatal case: the requested sheet or range
// does not exist in the source document. Extraction must not mask this
// as zero activity.
var ErrSheetNotFound = errors.New("sheet not found")

// Ref identifies one sheet within a source document.
type Ref struct {
	// Document is a spreadsheet ID for the Google source or a file path
	// for the XLSX source.
	Document string
	// Sheet is the sheet (tab) name, optionally with an A1 range suffix
	// for the Google source ("Sheet1!A1:Z").
	Sheet string
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%s", r.Document, r.Sheet)
}

// Source fetches the rows of one sheet. Implementations block for the
// duration of the fetch and honor ctx cancellation; retry policy belongs
// to the caller, not the source.
type Source interface {
	Rows(ctx context.Context, ref Ref) ([]domain.RawRow, error)
}

// rowsFromCells converts a rectangular cell grid into RawRows: first row
// is the header row, remaining rows carry 1-based sheet indices.
func rowsFromCells(cells [][]string) []domain.RawRow {
	if len(cells) < 2 {
		return nil
	}
	headers := cells[0]
	rows := make([]domain.RawRow, 0, len(cells)-1)
	for i, values := range cells[1:] {
		rows = append(rows, domain.RawRow{
			Index:   i + 2, // header occupies row 1
			Headers: headers,
			Values:  values,
		})
	}
	return rows
}
