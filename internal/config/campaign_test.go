package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const campaignsYAML = `
campaigns:
  - key: acme
    name: ACME September
    document: 1AbC-spreadsheet-id
    contract_sheet: Contrato
    sheets:
      - channel: YouTube
        sheet: YouTube
        primary: true
      - channel: Display
        sheet: Display Geral
    expected_channels: [YouTube, Display, TikTok]
    aliases:
      spend: ["media cost"]
    contract_defaults:
      investment: 50000
      cpv_contracted: 0.25
      complete_views: 200000
      impressions: 1000000
      period_start: 01/09/2025
      period_end: 30/09/2025
  - key: globex
    document: 2XyZ-spreadsheet-id
    sheets:
      - channel: Display
        sheet: Display
`

func writeCampaigns(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "campaigns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCampaigns(t *testing.T) {
	campaigns, err := LoadCampaigns(writeCampaigns(t, campaignsYAML))
	require.NoError(t, err)
	require.Len(t, campaigns, 2)

	acme := campaigns["acme"]
	assert.Equal(t, "1AbC-spreadsheet-id", acme.Document)
	assert.Equal(t, "Contrato", acme.ContractSheet)
	require.Len(t, acme.Sheets, 2)
	assert.Equal(t, []string{"YouTube", "Display", "TikTok"}, acme.ExpectedChannelList())
	assert.Equal(t, []string{"media cost"}, acme.Aliases["spend"])

	summary := acme.Contract.ToSummary()
	assert.True(t, summary.Investment.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, int64(200000), summary.CompleteViewsContracted)
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), summary.PeriodStart)

	// Without expected_channels the sheet channels are the expected set.
	globex := campaigns["globex"]
	assert.Equal(t, []string{"Display"}, globex.ExpectedChannelList())
}

func TestPrimarySheet(t *testing.T) {
	campaigns, err := LoadCampaigns(writeCampaigns(t, campaignsYAML))
	require.NoError(t, err)

	assert.Equal(t, "YouTube", campaigns["acme"].PrimarySheet().Sheet)
	// Without an explicit marker the first sheet is primary.
	assert.Equal(t, "Display", campaigns["globex"].PrimarySheet().Sheet)
}

func TestLoadCampaignsValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing key", `
campaigns:
  - document: doc
    sheets:
      - channel: YouTube
        sheet: YouTube
`},
		{"missing document", `
campaigns:
  - key: acme
    sheets:
      - channel: YouTube
        sheet: YouTube
`},
		{"no sheets", `
campaigns:
  - key: acme
    document: doc
`},
		{"sheet missing channel", `
campaigns:
  - key: acme
    document: doc
    sheets:
      - sheet: YouTube
`},
		{"duplicate keys", `
campaigns:
  - key: acme
    document: doc
    sheets:
      - channel: YouTube
        sheet: YouTube
  - key: acme
    document: doc2
    sheets:
      - channel: Display
        sheet: Display
`},
		{"empty file", `campaigns: []`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCampaigns(writeCampaigns(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadCampaignsMissingFile(t *testing.T) {
	_, err := LoadCampaigns(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
