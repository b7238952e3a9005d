package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"mediapulse/pkg/contracts/domain"
)

// XLSXSource reads sheets out of local workbook files, for campaigns
// whose platforms deliver exports by file drop instead of a shared
// spreadsheet. Ref.Document is the workbook path.
type XLSXSource struct {
	logger *slog.Logger
}

// NewXLSXSource creates a workbook-file source.
func NewXLSXSource(logger *slog.Logger) *XLSXSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXSource{logger: logger}
}

// Rows reads one sheet of the workbook. Tab names in exports routinely
// carry stray spaces, so an exact-name miss falls back to a normalized
// scan over the sheet list before reporting ErrSheetNotFound.
func (x *XLSXSource) Rows(ctx context.Context, ref Ref) ([]domain.RawRow, error) {
	f, err := excelize.OpenFile(ref.Document)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", ref.Document, err)
	}
	defer f.Close()

	cells, err := f.GetRows(ref.Sheet)
	if err != nil {
		name, ok := matchSheetName(f.GetSheetList(), ref.Sheet)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, ref)
		}
		cells, err = f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", ref, err)
		}
	}

	x.logger.InfoContext(ctx, "read workbook sheet",
		slog.String("ref", ref.String()),
		slog.Int("rows", len(cells)))

	return rowsFromCells(cells), nil
}

func matchSheetName(names []string, want string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(want))
	for _, name := range names {
		if strings.ToLower(strings.TrimSpace(name)) == normalized {
			return name, true
		}
	}
	return "", false
}
