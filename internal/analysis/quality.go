package analysis

import (
	"math"

	"forecast-go/internal/models"
	"forecast-go/internal/state"
)

// ProfileColumn computes null rate, distinctness and entropy for one column
func ProfileColumn(df *state.DataFrame, colIdx int) models.ColumnQuality {
	profile := models.ColumnQuality{
		Column:    df.Headers[colIdx],
		TotalRows: len(df.Rows),
	}

	uniqueValues := make(map[string]int)
	nonNullCount := 0
	for i := range df.Rows {
		value := df.Cell(i, colIdx)
		if state.IsNull(value) {
			continue
		}
		nonNullCount++
		uniqueValues[value]++
	}

	profile.NonNullRows = nonNullCount
	profile.DistinctCount = len(uniqueValues)
	if profile.TotalRows > 0 {
		profile.NullRate = float64(profile.TotalRows-nonNullCount) / float64(profile.TotalRows)
	}
	profile.Entropy = calculateEntropy(uniqueValues, nonNullCount)

	// A column usable for forecasting needs values; sparse columns score low.
	profile.QualityScore = math.Max(0, math.Min(1, 1.0-profile.NullRate))
	return profile
}

// ProfileAllColumns profiles every column in header order
func ProfileAllColumns(df *state.DataFrame) []models.ColumnQuality {
	profiles := make([]models.ColumnQuality, len(df.Headers))
	for i := range df.Headers {
		profiles[i] = ProfileColumn(df, i)
	}
	return profiles
}

// calculateEntropy computes Shannon entropy in bits
func calculateEntropy(valueCounts map[string]int, total int) float64 {
	if total == 0 {
		return 0
	}

	entropy := 0.0
	for _, count := range valueCounts {
		if count > 0 {
			p := float64(count) / float64(total)
			entropy -= p * math.Log2(p)
		}
	}
	return entropy
}
