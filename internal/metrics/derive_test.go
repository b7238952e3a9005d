package metrics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCTR(t *testing.T) {
	assert.InDelta(t, 1.0, CTR(10, 1000), 1e-9)
	assert.InDelta(t, 0.5, CTR(5, 1000), 1e-9)
	assert.Zero(t, CTR(10, 0))
	assert.Zero(t, CTR(0, 0))
}

func TestVTR(t *testing.T) {
	assert.InDelta(t, 80.0, VTR(800, 1000), 1e-9)
	assert.Zero(t, VTR(800, 0))
}

func TestCPV(t *testing.T) {
	assert.InDelta(t, 0.125, CPV(decimal.RequireFromString("100"), 800), 1e-9)
	assert.Zero(t, CPV(decimal.RequireFromString("100"), 0))
}

func TestCPM(t *testing.T) {
	assert.InDelta(t, 100.0, CPM(decimal.RequireFromString("100"), 1000), 1e-9)
	assert.InDelta(t, 5.0, CPM(decimal.RequireFromString("50"), 10000), 1e-9)
	assert.Zero(t, CPM(decimal.RequireFromString("100"), 0))
}

func TestPacing(t *testing.T) {
	assert.InDelta(t, 50.0, Pacing(decimal.RequireFromString("500"), decimal.RequireFromString("1000")), 1e-9)
	assert.Zero(t, Pacing(decimal.RequireFromString("500"), decimal.Zero))
}
