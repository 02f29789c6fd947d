package archive

import (
	"testing"
	"time"

	"forecast-go/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryRows(t *testing.T) {
	at := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	o := &service.Outlook{
		ID:          uuid.New(),
		GeneratedAt: at,
		Entries: []service.IndicatorOutcome{
			{Name: "Economy", File: "economy.csv", Column: "gdp_growth", Regime: "time_series", Current: 4.2, Forecast: 5.54321, Target: 100},
			{Name: "Employment", Regime: "snapshot", Current: 62, Forecast: 62, Target: 90, Degraded: true},
		},
	}

	rows := EntryRows(o)
	require.Len(t, rows, 2)

	assert.Equal(t, o.ID, rows[0].RunID)
	assert.Equal(t, uint16(0), rows[0].Position)
	assert.Equal(t, "5.5432", rows[0].Forecast.String())
	assert.Equal(t, "4.2", rows[0].Current.String())
	assert.Equal(t, uint8(0), rows[0].Degraded)
	assert.Equal(t, at, rows[0].GeneratedAt)

	assert.Equal(t, uint16(1), rows[1].Position)
	assert.Equal(t, uint8(1), rows[1].Degraded)
}

func TestEntryRowsEmpty(t *testing.T) {
	assert.Empty(t, EntryRows(&service.Outlook{}))
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultListLimit, NormalizeLimit(-5))
	assert.Equal(t, 7, NormalizeLimit(7))
	assert.Equal(t, MaxListLimit, NormalizeLimit(10_000))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "forecast", cfg.Database)
}
