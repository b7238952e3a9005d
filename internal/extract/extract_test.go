package extract

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediapulse/pkg/contracts/domain"
)

var scenarioHeaders = []string{
	"Data", "Criativo", "Publisher", "Custo", "Impressões", "Cliques",
	"Início de Vídeo", "25%", "50%", "75%", "100%", "CTR",
}

func scenarioRow(index int, values ...string) domain.RawRow {
	return domain.RawRow{Index: index, Headers: scenarioHeaders, Values: values}
}

func TestRecordsScenarioRow(t *testing.T) {
	x := NewRowExtractor(nil, nil)
	rows := []domain.RawRow{
		scenarioRow(2,
			"01/09/2025", "Bumper 6s", "YouTube", "R$ 100,00", "1000", "10",
			"500", "450", "430", "410", "400", "1,0%"),
	}

	records, warnings := x.Records(context.Background(), "YouTube", rows)
	require.Len(t, records, 1)
	assert.Empty(t, warnings)

	r := records[0]
	assert.Equal(t, "YouTube", r.Channel)
	assert.Equal(t, "Bumper 6s", r.Creative)
	assert.Equal(t, "YouTube", r.Publisher)
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), r.Date)
	assert.True(t, r.Spend.Equal(decimal.RequireFromString("100")))
	assert.Equal(t, int64(1000), r.Impressions)
	assert.Equal(t, int64(10), r.Clicks)
	assert.Equal(t, int64(500), r.Starts)
	assert.Equal(t, int64(450), r.Q25)
	assert.Equal(t, int64(400), r.Q100)
	assert.InDelta(t, 1.0, r.SourceCTR, 1e-9)
}

func TestRecordsSkipsBlankRows(t *testing.T) {
	x := NewRowExtractor(nil, nil)
	rows := []domain.RawRow{
		scenarioRow(2, "", "", "", "", "", "", "", "", "", "", "", ""),
		scenarioRow(3, "nan", "-", "", "", "", "", "", "", "", "", "", ""),
		scenarioRow(4,
			"01/09/2025", "Bumper", "YouTube", "R$ 1,00", "10", "1",
			"5", "4", "4", "4", "4", ""),
	}

	records, warnings := x.Records(context.Background(), "YouTube", rows)
	assert.Len(t, records, 1)
	assert.Empty(t, warnings)
}

func TestRecordsUnparseableDateSkipsRowWithWarning(t *testing.T) {
	x := NewRowExtractor(nil, nil)
	rows := []domain.RawRow{
		scenarioRow(2,
			"Total", "Bumper", "YouTube", "R$ 900,00", "9000", "90",
			"", "", "", "", "", ""),
		scenarioRow(3,
			"01/09/2025", "Bumper", "YouTube", "R$ 1,00", "10", "1",
			"", "", "", "", "", ""),
	}

	records, warnings := x.Records(context.Background(), "YouTube", rows)
	require.Len(t, records, 1)
	require.Len(t, warnings, 1)
	assert.Equal(t, domain.WarnUnparseableCell, warnings[0].Kind)
	assert.Equal(t, 2, warnings[0].RowIndex)
	assert.Equal(t, "Total", warnings[0].RawValue)
}

func TestRecordsUnresolvedDateColumnWarnsOncePerBatch(t *testing.T) {
	x := NewRowExtractor(nil, nil)
	headers := []string{"Foo", "Bar"}
	rows := []domain.RawRow{
		{Index: 2, Headers: headers, Values: []string{"a", "b"}},
		{Index: 3, Headers: headers, Values: []string{"c", "d"}},
		{Index: 4, Headers: headers, Values: []string{"e", "f"}},
	}

	records, warnings := x.Records(context.Background(), "YouTube", rows)
	assert.Empty(t, records)
	require.Len(t, warnings, 1)
	assert.Equal(t, domain.WarnUnresolvedColumn, warnings[0].Kind)
	assert.Equal(t, "date", warnings[0].Field)
}

func TestRecordsMalformedNumericCellsDegradeToZero(t *testing.T) {
	x := NewRowExtractor(nil, nil)
	rows := []domain.RawRow{
		scenarioRow(2,
			"01/09/2025", "Bumper", "YouTube", "quinhentos", "abc", "nan",
			"", "", "", "", "", ""),
	}

	records, _ := x.Records(context.Background(), "YouTube", rows)
	require.Len(t, records, 1)
	assert.True(t, records[0].Spend.IsZero())
	assert.Zero(t, records[0].Impressions)
	assert.Zero(t, records[0].Clicks)
}

func TestRecordsMissingSpendColumnWarns(t *testing.T) {
	x := NewRowExtractor(nil, nil)
	headers := []string{"Data", "Impressões"}
	rows := []domain.RawRow{
		{Index: 2, Headers: headers, Values: []string{"01/09/2025", "100"}},
		{Index: 3, Headers: headers, Values: []string{"02/09/2025", "200"}},
	}

	records, warnings := x.Records(context.Background(), "YouTube", rows)
	assert.Len(t, records, 2)
	require.Len(t, warnings, 1)
	assert.Equal(t, domain.WarnUnresolvedColumn, warnings[0].Kind)
	assert.Equal(t, "spend", warnings[0].Field)
}
