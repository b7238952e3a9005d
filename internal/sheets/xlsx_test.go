package sheets

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "YouTube"))
	require.NoError(t, f.SetSheetRow("YouTube", "A1", &[]interface{}{"Data", "Custo", "Impressões"}))
	require.NoError(t, f.SetSheetRow("YouTube", "A2", &[]interface{}{"01/09/2025", "R$ 10,00", 1000}))
	require.NoError(t, f.SetSheetRow("YouTube", "A3", &[]interface{}{"02/09/2025", "R$ 20,00", 2000}))

	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestXLSXSourceRows(t *testing.T) {
	path := writeWorkbook(t)
	source := NewXLSXSource(nil)

	rows, err := source.Rows(context.Background(), Ref{Document: path, Sheet: "YouTube"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Index)
	assert.Equal(t, []string{"Data", "Custo", "Impressões"}, rows[0].Headers)
	assert.Equal(t, "01/09/2025", rows[0].Value(0))
	assert.Equal(t, "1000", rows[0].Value(2))
	assert.Equal(t, 3, rows[1].Index)
}

func TestXLSXSourceNormalizedSheetNameFallback(t *testing.T) {
	path := writeWorkbook(t)
	source := NewXLSXSource(nil)

	// Exports routinely vary tab-name case and padding; the normalized
	// scan still finds the sheet.
	rows, err := source.Rows(context.Background(), Ref{Document: path, Sheet: " youtube "})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestXLSXSourceMissingSheet(t *testing.T) {
	path := writeWorkbook(t)
	source := NewXLSXSource(nil)

	_, err := source.Rows(context.Background(), Ref{Document: path, Sheet: "TikTok"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSheetNotFound))
}

func TestXLSXSourceMissingFile(t *testing.T) {
	source := NewXLSXSource(nil)

	_, err := source.Rows(context.Background(), Ref{Document: "/nonexistent/export.xlsx", Sheet: "YouTube"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrSheetNotFound))
}

func TestRowsFromCells(t *testing.T) {
	assert.Nil(t, rowsFromCells(nil))
	assert.Nil(t, rowsFromCells([][]string{{"Data"}}))

	rows := rowsFromCells([][]string{
		{"Data", "Custo"},
		{"01/09/2025", "R$ 1,00"},
		{"02/09/2025"},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "R$ 1,00", rows[0].Value(1))
	// Ragged rows are safe to index past their end.
	assert.Equal(t, "", rows[1].Value(1))
}
