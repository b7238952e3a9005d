package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"mediapulse/internal/parse"
	"mediapulse/pkg/contracts/domain"
)

// ChannelSheet binds one distribution channel to the sheet tab its data
// arrives on.
type ChannelSheet struct {
	Channel string `yaml:"channel" validate:"required"`
	Sheet   string `yaml:"sheet" validate:"required"`
	// Primary marks the sheet whose absence is fatal for the run.
	Primary bool `yaml:"primary"`
}

// ContractDefaults are the per-campaign fallback values for contract
// fields the metadata sheet fails to resolve. Dates use DD/MM/YYYY.
type ContractDefaults struct {
	Investment    float64 `yaml:"investment"`
	CPVContracted float64 `yaml:"cpv_contracted"`
	CompleteViews int64   `yaml:"complete_views"`
	Impressions   int64   `yaml:"impressions"`
	PeriodStart   string  `yaml:"period_start"`
	PeriodEnd     string  `yaml:"period_end"`
}

// ToSummary converts the configured defaults into the domain shape.
func (d ContractDefaults) ToSummary() domain.ContractSummary {
	summary := domain.ContractSummary{
		Investment:              decimal.NewFromFloat(d.Investment),
		CPVContracted:           decimal.NewFromFloat(d.CPVContracted),
		CompleteViewsContracted: d.CompleteViews,
		ImpressionsContracted:   d.Impressions,
	}
	if t, ok := parse.Date(d.PeriodStart); ok {
		summary.PeriodStart = t
	}
	if t, ok := parse.Date(d.PeriodEnd); ok {
		summary.PeriodEnd = t
	}
	return summary
}

// Campaign is the full extraction definition for one campaign: where its
// sheets live, which channels are expected, and how its headers map to
// canonical fields. All of this used to be per-campaign script constants;
// it is explicit configuration so campaigns never share mutable state.
type Campaign struct {
	Key           string         `yaml:"key" validate:"required"`
	Name          string         `yaml:"name"`
	Document      string         `yaml:"document" validate:"required"`
	ContractSheet string         `yaml:"contract_sheet"`
	Sheets        []ChannelSheet `yaml:"sheets" validate:"required,min=1,dive"`

	// ExpectedChannels drives zero-backfill of the per-channel summary.
	// Empty means "the channels of the configured sheets".
	ExpectedChannels []string `yaml:"expected_channels"`

	// Aliases overrides the default alias table per canonical field.
	Aliases map[string][]string `yaml:"aliases"`

	Contract ContractDefaults `yaml:"contract_defaults"`
}

// ExpectedChannelList returns the channel list the per-channel summary
// must enumerate.
func (c Campaign) ExpectedChannelList() []string {
	if len(c.ExpectedChannels) > 0 {
		return c.ExpectedChannels
	}
	channels := make([]string, 0, len(c.Sheets))
	for _, s := range c.Sheets {
		channels = append(channels, s.Channel)
	}
	return channels
}

// PrimarySheet returns the sheet whose absence aborts the run. Without
// an explicit marker the first configured sheet is primary.
func (c Campaign) PrimarySheet() ChannelSheet {
	for _, s := range c.Sheets {
		if s.Primary {
			return s
		}
	}
	return c.Sheets[0]
}

// campaignsFile is the on-disk shape of the campaigns config.
type campaignsFile struct {
	Campaigns []Campaign `yaml:"campaigns"`
}

// LoadCampaigns reads and validates the campaign definitions file,
// returning them keyed by campaign key.
func LoadCampaigns(path string) (map[string]Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read campaigns file %s: %w", path, err)
	}

	var file campaignsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse campaigns file %s: %w", path, err)
	}
	if len(file.Campaigns) == 0 {
		return nil, fmt.Errorf("campaigns file %s defines no campaigns", path)
	}

	validate := validator.New()
	campaigns := make(map[string]Campaign, len(file.Campaigns))
	for i, c := range file.Campaigns {
		if err := validate.Struct(c); err != nil {
			return nil, fmt.Errorf("campaign %d (%q) failed validation: %w", i, c.Key, err)
		}
		if _, exists := campaigns[c.Key]; exists {
			return nil, fmt.Errorf("duplicate campaign key %q", c.Key)
		}
		campaigns[c.Key] = c
	}

	return campaigns, nil
}
