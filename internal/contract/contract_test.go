package contract

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediapulse/pkg/contracts/domain"
)

func kv(index int, label, value string) domain.RawRow {
	return domain.RawRow{
		Index:   index,
		Headers: []string{"Campo", "Valor"},
		Values:  []string{label, value},
	}
}

func TestExtractFullSheet(t *testing.T) {
	e := NewExtractor(nil, domain.ContractSummary{})
	rows := []domain.RawRow{
		kv(2, "Investimento", "R$ 50.000,00"),
		kv(3, "CPV Contratado", "R$ 0,25"),
		kv(4, "Views Completas Contratadas", "200.000"),
		kv(5, "Impressões Contratadas", "1.000.000"),
		kv(6, "Período", "01/09/2025 a 30/09/2025"),
	}

	summary, warnings := e.Extract(context.Background(), rows)
	assert.Empty(t, warnings)
	assert.True(t, summary.Investment.Equal(decimal.RequireFromString("50000")))
	assert.True(t, summary.CPVContracted.Equal(decimal.RequireFromString("0.25")))
	assert.Equal(t, int64(200000), summary.CompleteViewsContracted)
	assert.Equal(t, int64(1000000), summary.ImpressionsContracted)
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), summary.PeriodStart)
	assert.Equal(t, time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), summary.PeriodEnd)
}

func TestExtractSeparateStartEndRows(t *testing.T) {
	e := NewExtractor(nil, domain.ContractSummary{})
	rows := []domain.RawRow{
		kv(2, "Início", "01/09/2025"),
		kv(3, "Término", "30/09/2025"),
	}

	summary, warnings := e.Extract(context.Background(), rows)
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), summary.PeriodStart)
	assert.Equal(t, time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), summary.PeriodEnd)
	// Monetary and count fields fall back with warnings.
	assert.Len(t, warnings, 4)
}

func TestExtractMissingFieldsUseDefaultsWithWarnings(t *testing.T) {
	defaults := domain.ContractSummary{
		Investment:              decimal.RequireFromString("10000"),
		CPVContracted:           decimal.RequireFromString("0.30"),
		CompleteViewsContracted: 50000,
		ImpressionsContracted:   300000,
		PeriodStart:             time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:               time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC),
	}

	e := NewExtractor(nil, defaults)
	summary, warnings := e.Extract(context.Background(), nil)

	assert.True(t, summary.Investment.Equal(defaults.Investment))
	assert.Equal(t, defaults.CompleteViewsContracted, summary.CompleteViewsContracted)
	assert.Equal(t, defaults.PeriodStart, summary.PeriodStart)
	require.Len(t, warnings, 6)
	for _, w := range warnings {
		assert.Equal(t, domain.WarnMissingContract, w.Kind)
	}
}

func TestExtractIgnoresNoiseRows(t *testing.T) {
	e := NewExtractor(nil, domain.ContractSummary{})
	rows := []domain.RawRow{
		kv(2, "", ""),
		kv(3, "Observações", ""),
		kv(4, "Investimento", "R$ 1.000,00"),
		// Second occurrence must not overwrite the first.
		kv(5, "Investimento", "R$ 9.999,99"),
	}

	summary, _ := e.Extract(context.Background(), rows)
	assert.True(t, summary.Investment.Equal(decimal.RequireFromString("1000")))
}

func TestSplitPeriod(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"a separator", "01/09/2025 a 30/09/2025", true},
		{"accented até", "01/09/2025 até 30/09/2025", true},
		{"dash separator", "01/09/2025 - 30/09/2025", true},
		{"iso dates", "2025-09-01 a 2025-09-30", true},
		{"single date", "01/09/2025", false},
		{"garbage", "setembro", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, ok := splitPeriod(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), start)
				assert.Equal(t, time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), end)
			}
		})
	}
}
