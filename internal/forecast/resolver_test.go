package forecast

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"forecast-go/internal/dataset"
	"forecast-go/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC)

func newTestResolver(t *testing.T, files map[string]string) *Resolver {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return NewResolver(dataset.NewFileSource(dir), WithClock(func() time.Time { return fixedNow }))
}

func assertStrictlyIncreasing(t *testing.T, points []Point) {
	t.Helper()
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Timestamp.After(points[i-1].Timestamp),
			"timestamp %d (%s) not after %d (%s)", i, points[i].Timestamp, i-1, points[i-1].Timestamp)
	}
}

func assertBandsOrdered(t *testing.T, points []Point) {
	t.Helper()
	for _, p := range points {
		assert.LessOrEqual(t, p.Lower, p.Estimate)
		assert.LessOrEqual(t, p.Estimate, p.Upper)
	}
}

func TestGDPGrowthScenario(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"economy.csv": "year,gdp_growth\n2015,3.0\n2020,4.0\n2023,4.2\n",
	})

	res, err := r.Forecast(context.Background(), "economy.csv", "gdp_growth", 5)
	require.NoError(t, err)

	assert.Equal(t, RegimeTimeSeries, res.Regime)
	assert.Equal(t, "strict_year", res.DateStrategy)
	assert.Equal(t, 3, res.RowsUsed)
	assertStrictlyIncreasing(t, res.Points)
	assertBandsOrdered(t, res.Points)

	history := res.History()
	require.Len(t, history, 3)
	assert.Equal(t, 2015, history[0].Timestamp.Year())

	future := res.Future()
	require.Len(t, future, 6)
	assert.Equal(t, 2026, future[0].Timestamp.Year())
	assert.Equal(t, 2031, future[5].Timestamp.Year())
	for i := 1; i < len(future); i++ {
		assert.GreaterOrEqual(t, future[i].Estimate, future[i-1].Estimate)
	}

	require.NotNil(t, res.Fit)
	assert.Greater(t, res.Fit.Slope, 0.0)
}

func TestSnapshotScenario(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"health.csv": "current_value,target_value\n72,80\n",
	})

	res, err := r.Forecast(context.Background(), "health.csv", "life_expectancy", 10)
	require.NoError(t, err)

	assert.Equal(t, RegimeSnapshot, res.Regime)
	require.Len(t, res.Points, 11)
	assert.Empty(t, res.History())
	assert.Equal(t, 2026, res.Points[0].Timestamp.Year())
	assertStrictlyIncreasing(t, res.Points)
	for _, p := range res.Points {
		assert.Equal(t, 72.0, p.Estimate)
		assert.Equal(t, 72.0, p.Lower)
		assert.Equal(t, 72.0, p.Upper)
	}
}

func TestSnapshotUsesLastNonNullValue(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"climate.csv": "Current,target\n15.5,14\n16.5,14\n,14\n",
	})

	res, err := r.Forecast(context.Background(), "climate.csv", "avg_ecology", 3)
	require.NoError(t, err)

	assert.Equal(t, "Current", res.Column)
	require.Len(t, res.Points, 4)
	for _, p := range res.Points {
		assert.Equal(t, 16.5, p.Estimate)
	}
}

func TestSnapshotAllNullFails(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"gender.csv": "value\n\nNaN\n",
	})

	_, err := r.Forecast(context.Background(), "gender.csv", "women_employment", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoValidSeriesData)

	var fe *Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "value", fe.Column)
}

func TestColumnResolutionIsCaseInsensitive(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"lower.csv": "year,gdp_growth\n2018,2.0\n2019,2.5\n2021,3.5\n",
		"upper.csv": "YEAR,GDP_Growth\n2018,2.0\n2019,2.5\n2021,3.5\n",
	})

	lower, err := r.Forecast(context.Background(), "lower.csv", "gdp_growth", 4)
	require.NoError(t, err)
	upper, err := r.Forecast(context.Background(), "upper.csv", "gdp_growth", 4)
	require.NoError(t, err)

	assert.Equal(t, RegimeTimeSeries, upper.Regime)
	assert.Equal(t, lower.Points, upper.Points)
}

func TestTimeSeriesWinsOverSnapshot(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"employment.csv": "year,employment_rate,current_value\n2019,60,99\n2022,63,99\n",
	})

	res, err := r.Forecast(context.Background(), "employment.csv", "employment_rate", 2)
	require.NoError(t, err)

	assert.Equal(t, RegimeTimeSeries, res.Regime)
	assert.Equal(t, "employment_rate", res.Column)
	final, ok := res.Final()
	require.True(t, ok)
	assert.NotEqual(t, 99.0, final.Estimate)
}

func TestMissingFileIsDatasetNotFound(t *testing.T) {
	r := newTestResolver(t, nil)

	_, err := r.Forecast(context.Background(), "economy.csv", "gdp_growth", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatasetNotFound)
	assert.NotErrorIs(t, err, ErrNoValidSeriesData)

	var fe *Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "economy.csv", fe.Dataset)
	assert.Contains(t, fe.Path, "economy.csv")
}

func TestLenientDateFallback(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"infra.csv": "ds,internet_access\n2019-06-30,70\n2020-06-30,74\nnot a date,80\n2022-06-30,82\n",
	})

	res, err := r.Forecast(context.Background(), "infra.csv", "internet_access", 3)
	require.NoError(t, err)

	assert.Equal(t, "lenient", res.DateStrategy)
	assert.Equal(t, 3, res.RowsUsed)
	assert.Equal(t, 1, res.RowsDropped)
	assert.Len(t, res.History(), 3)
	assert.Len(t, res.Future(), 4)
	assertStrictlyIncreasing(t, res.Points)
}

func TestAllDatesUnparseableIsNoValidSeriesData(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"bad.csv": "year,literacy_rate\nfoo,99\nbar,99.5\n",
	})

	_, err := r.Forecast(context.Background(), "bad.csv", "literacy_rate", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoValidSeriesData)
	assert.Contains(t, err.Error(), "bad.csv")
	assert.Contains(t, err.Error(), "literacy_rate")
}

func TestTimeSeriesWithoutCompleteRowsDoesNotDegrade(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"edu.csv": "year,literacy_rate,current_value\n2019,,97\n,98,97\n",
	})

	_, err := r.Forecast(context.Background(), "edu.csv", "literacy_rate", 3)
	assert.ErrorIs(t, err, ErrNoValidSeriesData)
}

func TestUnresolvableColumns(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"governance.csv": "country,score\nUZ,40\n",
	})

	_, err := r.Forecast(context.Background(), "governance.csv", "clean_governance_index", 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvableColumns)
	assert.Contains(t, err.Error(), "clean_governance_index")
	assert.Contains(t, err.Error(), "governance.csv")
}

func TestNegativeHorizon(t *testing.T) {
	r := newTestResolver(t, nil)
	_, err := r.Forecast(context.Background(), "economy.csv", "gdp_growth", -1)
	assert.ErrorIs(t, err, ErrInvalidHorizon)
}

func TestOversizedHorizon(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"economy.csv": "year,gdp_growth\n2015,3.0\n2020,4.0\n",
	})

	for _, years := range []int{MaxHorizonYears + 1, 1_000_000_000, math.MaxInt} {
		_, err := r.Forecast(context.Background(), "economy.csv", "gdp_growth", years)
		assert.ErrorIs(t, err, ErrInvalidHorizon, "years=%d", years)
	}

	df := &state.DataFrame{Headers: []string{"current_value"}, Rows: [][]string{{"72"}}}
	_, err := r.ForecastFrame(context.Background(), "health.csv", df, "life_expectancy", math.MaxInt)
	assert.ErrorIs(t, err, ErrInvalidHorizon)

	res, err := r.Forecast(context.Background(), "economy.csv", "gdp_growth", MaxHorizonYears)
	require.NoError(t, err)
	assert.Len(t, res.Future(), MaxHorizonYears+1)
}

func TestZeroHorizonYieldsSingleFuturePoint(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"economy.csv": "year,gdp_growth\n2015,3.0\n2020,4.0\n",
	})

	res, err := r.Forecast(context.Background(), "economy.csv", "gdp_growth", 0)
	require.NoError(t, err)
	require.Len(t, res.Future(), 1)
	assert.Equal(t, 2026, res.Future()[0].Timestamp.Year())
}

func TestSingleRowSeriesIsFlat(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"economy.csv": "year,gdp_growth\n2020,4.0\n",
	})

	res, err := r.Forecast(context.Background(), "economy.csv", "gdp_growth", 3)
	require.NoError(t, err)
	for _, p := range res.Points {
		assert.Equal(t, 4.0, p.Estimate)
		assert.Equal(t, p.Lower, p.Upper)
	}
}

func TestHistoryExcludesCurrentAndLaterYears(t *testing.T) {
	r := newTestResolver(t, map[string]string{
		"economy.csv": "year,gdp_growth\n2020,3\n2024,4\n2026,5\n2027,6\n2020,3.2\n",
	})

	res, err := r.Forecast(context.Background(), "economy.csv", "gdp_growth", 2)
	require.NoError(t, err)

	assert.Equal(t, 5, res.RowsUsed)
	history := res.History()
	require.Len(t, history, 2)
	assert.Equal(t, 2020, history[0].Timestamp.Year())
	assert.Equal(t, 2024, history[1].Timestamp.Year())
	assert.Len(t, res.Future(), 3)
	assertStrictlyIncreasing(t, res.Points)
}

func TestForecastFrameDoesNotMutateInput(t *testing.T) {
	df := &state.DataFrame{
		Headers: []string{"Year", "value"},
		Rows:    [][]string{{"2021", "1"}, {"x", "2"}, {"2023", ""}},
	}
	before := df.Clone()

	r := NewResolver(dataset.NewFileSource(t.TempDir()), WithClock(func() time.Time { return fixedNow }))
	_, err := r.ForecastFrame(context.Background(), "mem", df, "value", 2)
	require.NoError(t, err)

	assert.Equal(t, before, df)
}

func TestForecastFrameHonoursCancellation(t *testing.T) {
	df := &state.DataFrame{
		Headers: []string{"year", "v"},
		Rows:    [][]string{{"2021", "1"}, {"2022", "2"}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewResolver(dataset.NewFileSource(t.TempDir()))
	_, err := r.ForecastFrame(ctx, "mem", df, "v", 2)
	assert.ErrorIs(t, err, context.Canceled)
}
