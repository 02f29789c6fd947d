package analysis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"forecast-go/internal/forecast"
	"forecast-go/internal/models"
	"forecast-go/internal/state"
)

// Reading is the latest observed and targeted value of an indicator
type Reading struct {
	Current    float64
	HasCurrent bool
	Target     float64
	HasTarget  bool
}

// ReadCurrentAndTarget picks the latest current and target values from a
// dataset. In the time-series shape the current value is the last non-null
// metric entry; otherwise it comes from the current value column.
func ReadCurrentAndTarget(df *state.DataFrame, metric string) Reading {
	var out Reading
	if df == nil {
		return out
	}

	r := forecast.NewColumnResolver(df.Headers)
	_, hasDate := r.Resolve(forecast.DateAliases...)
	if col, ok := r.Resolve(metric); ok && hasDate {
		out.Current, out.HasCurrent = df.LastFloat(col.Index)
	} else if col, ok := r.Resolve(forecast.CurrentValueAliases...); ok {
		out.Current, out.HasCurrent = df.LastFloat(col.Index)
	}

	if col, ok := r.Resolve(forecast.TargetValueAliases...); ok {
		out.Target, out.HasTarget = df.LastFloat(col.Index)
	}
	return out
}

// Inspect reports column types, numeric summaries and the columns the
// forecaster would resolve for a dataset
func Inspect(df *state.DataFrame) models.DatasetInspection {
	result := models.DatasetInspection{
		FileName:       df.FileName,
		NumRows:        len(df.Rows),
		NumColumns:     len(df.Headers),
		ColumnNames:    append([]string(nil), df.Headers...),
		ColumnTypes:    make(map[string]string),
		NumericColumns: []string{},
		PotentialDates: []string{},
		Stats:          []models.ColumnStats{},
	}

	numeric := df.GetNumericColumnIndices()
	for i, colName := range df.Headers {
		colType := inferColumnType(df, i)
		result.ColumnTypes[colName] = colType

		colLower := strings.ToLower(colName)
		if colType == "date" || containsAny(colLower, []string{"date", "time", "year", "period"}) || colLower == "ds" {
			result.PotentialDates = append(result.PotentialDates, colName)
		}

		if !numeric[i] {
			continue
		}
		result.NumericColumns = append(result.NumericColumns, colName)
		if stats, err := CalculateStats(df, i); err == nil {
			result.Stats = append(result.Stats, stats)
		}
	}

	r := forecast.NewColumnResolver(df.Headers)
	if col, ok := r.Resolve(forecast.DateAliases...); ok {
		result.DateColumn = col.Name
	}
	if col, ok := r.Resolve(forecast.CurrentValueAliases...); ok {
		result.CurrentColumn = col.Name
	}
	if col, ok := r.Resolve(forecast.TargetValueAliases...); ok {
		result.TargetColumn = col.Name
	}
	result.Quality = ProfileAllColumns(df)

	return result
}

func inferColumnType(df *state.DataFrame, colIndex int) string {
	// Check a sample of rows
	sampleSize := 20
	if len(df.Rows) < sampleSize {
		sampleSize = len(df.Rows)
	}

	isInt := true
	isFloat := true
	isDate := true
	seen := 0

	for i := 0; i < sampleSize; i++ {
		val := strings.TrimSpace(df.Cell(i, colIndex))
		if state.IsNull(val) {
			continue // Skip empties
		}
		seen++

		if _, err := strconv.Atoi(val); err != nil {
			isInt = false
		}
		if _, err := strconv.ParseFloat(val, 64); err != nil {
			isFloat = false
		}
		if !isDateString(val) {
			isDate = false
		}
	}

	if seen == 0 {
		return "string"
	}
	if isInt {
		return "int"
	}
	if isFloat {
		return "float"
	}
	if isDate {
		return "date"
	}
	return "string"
}

func isDateString(val string) bool {
	formats := []string{
		time.RFC3339,
		"2006-01-02",
		"02/01/2006",
		"01/02/2006",
		"2006/01/02",
	}
	for _, f := range formats {
		if _, err := time.Parse(f, val); err == nil {
			return true
		}
	}
	return false
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// CalculateStats computes basic stats for a numeric column
func CalculateStats(df *state.DataFrame, colIndex int) (models.ColumnStats, error) {
	stats := models.ColumnStats{}
	if colIndex < 0 || colIndex >= len(df.Headers) {
		return stats, fmt.Errorf("column index %d out of range", colIndex)
	}
	stats.Column = df.Headers[colIndex]

	values := []float64{}
	for i := range df.Rows {
		if val, ok := state.ParseFloat(df.Cell(i, colIndex)); ok {
			values = append(values, val)
		}
	}

	if len(values) == 0 {
		return stats, fmt.Errorf("no numeric values in %s", stats.Column)
	}

	sort.Float64s(values)
	stats.Count = len(values)
	stats.Min = values[0]
	stats.Max = values[len(values)-1]

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	stats.Mean = sum / float64(len(values))

	if len(values)%2 == 0 {
		stats.Median = (values[len(values)/2-1] + values[len(values)/2]) / 2
	} else {
		stats.Median = values[len(values)/2]
	}

	return stats, nil
}
