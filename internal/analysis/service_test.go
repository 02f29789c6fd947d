package analysis

import (
	"testing"

	"forecast-go/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCurrentAndTargetTimeSeries(t *testing.T) {
	df := &state.DataFrame{
		Headers: []string{"year", "gdp_growth", "target"},
		Rows: [][]string{
			{"2020", "4.0", "5"},
			{"2023", "4.2", ""},
			{"2024", "", "6"},
		},
	}

	got := ReadCurrentAndTarget(df, "GDP_growth")
	assert.True(t, got.HasCurrent)
	assert.Equal(t, 4.2, got.Current)
	assert.True(t, got.HasTarget)
	assert.Equal(t, 6.0, got.Target)
}

func TestReadCurrentAndTargetSnapshot(t *testing.T) {
	df := &state.DataFrame{
		Headers: []string{"current_value", "target_value"},
		Rows:    [][]string{{"72", "80"}},
	}

	got := ReadCurrentAndTarget(df, "life_expectancy")
	assert.Equal(t, Reading{Current: 72, HasCurrent: true, Target: 80, HasTarget: true}, got)
}

func TestReadCurrentAndTargetAbsent(t *testing.T) {
	assert.Equal(t, Reading{}, ReadCurrentAndTarget(nil, "x"))

	df := &state.DataFrame{Headers: []string{"country"}, Rows: [][]string{{"UZ"}}}
	assert.Equal(t, Reading{}, ReadCurrentAndTarget(df, "x"))
}

func TestInspect(t *testing.T) {
	df := &state.DataFrame{
		FileName: "economy.csv",
		Headers:  []string{"Year", "gdp_growth", "region", "target_value"},
		Rows: [][]string{
			{"2019", "3.5", "north", "5"},
			{"2020", "NaN", "south", "5"},
			{"2021", "4.5", "north", ""},
		},
	}

	got := Inspect(df)
	assert.Equal(t, 3, got.NumRows)
	assert.Equal(t, 4, got.NumColumns)
	assert.Equal(t, "int", got.ColumnTypes["Year"])
	assert.Equal(t, "float", got.ColumnTypes["gdp_growth"])
	assert.Equal(t, "string", got.ColumnTypes["region"])
	assert.Equal(t, []string{"Year", "gdp_growth", "target_value"}, got.NumericColumns)
	assert.Equal(t, []string{"Year"}, got.PotentialDates)
	assert.Equal(t, "Year", got.DateColumn)
	assert.Empty(t, got.CurrentColumn)
	assert.Equal(t, "target_value", got.TargetColumn)

	require.Len(t, got.Stats, 3)
	gdp := got.Stats[1]
	assert.Equal(t, "gdp_growth", gdp.Column)
	assert.Equal(t, 2, gdp.Count)
	assert.Equal(t, 3.5, gdp.Min)
	assert.Equal(t, 4.5, gdp.Max)
	assert.Equal(t, 4.0, gdp.Mean)
	assert.Equal(t, 4.0, gdp.Median)
}

func TestCalculateStatsErrors(t *testing.T) {
	df := &state.DataFrame{Headers: []string{"a"}, Rows: [][]string{{"x"}}}

	_, err := CalculateStats(df, 0)
	assert.Error(t, err)

	_, err = CalculateStats(df, 3)
	assert.Error(t, err)
}

func TestProfileColumn(t *testing.T) {
	df := &state.DataFrame{
		Headers: []string{"region"},
		Rows:    [][]string{{"north"}, {"south"}, {""}, {"north"}},
	}

	q := ProfileColumn(df, 0)
	assert.Equal(t, 4, q.TotalRows)
	assert.Equal(t, 3, q.NonNullRows)
	assert.Equal(t, 2, q.DistinctCount)
	assert.InDelta(t, 0.25, q.NullRate, 1e-9)
	assert.InDelta(t, 0.9183, q.Entropy, 1e-3)
	assert.InDelta(t, 0.75, q.QualityScore, 1e-9)

	assert.Len(t, ProfileAllColumns(df), 1)
}
