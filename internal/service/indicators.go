package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Indicator is one catalogue entry: a dataset file, the metric column to
// forecast and the target used when the file carries none.
type Indicator struct {
	Name          string  `json:"name"`
	File          string  `json:"file"`
	Column        string  `json:"column"`
	DefaultTarget float64 `json:"default_target"`
	// LowerIsBetter is informational only; forecasting ignores it.
	LowerIsBetter bool `json:"lower_is_better,omitempty"`
}

// DefaultIndicators returns the built-in development indicator catalogue
func DefaultIndicators() []Indicator {
	return []Indicator{
		{Name: "Economy", File: "economy.csv", Column: "gdp_growth", DefaultTarget: 100},
		{Name: "Education", File: "education.csv", Column: "literacy_rate", DefaultTarget: 100},
		{Name: "Health", File: "health.csv", Column: "life_expectancy", DefaultTarget: 80},
		{Name: "Climate", File: "climate.csv", Column: "avg_ecology", DefaultTarget: 100},
		{Name: "Infrastructure", File: "infrastructure.csv", Column: "internet_access", DefaultTarget: 95},
		{Name: "Governance", File: "governance.csv", Column: "clean_governance_index", DefaultTarget: 100, LowerIsBetter: true},
		{Name: "Employment", File: "employment.csv", Column: "employment_rate", DefaultTarget: 90},
		{Name: "Gender Equality", File: "gender.csv", Column: "women_employment", DefaultTarget: 60},
	}
}

// LoadIndicators reads a JSON array of indicators from path
func LoadIndicators(path string) ([]Indicator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read indicator catalogue: %w", err)
	}

	var indicators []Indicator
	if err := json.Unmarshal(data, &indicators); err != nil {
		return nil, fmt.Errorf("failed to parse indicator catalogue %s: %w", path, err)
	}
	if err := ValidateIndicators(indicators); err != nil {
		return nil, fmt.Errorf("invalid indicator catalogue %s: %w", path, err)
	}
	return indicators, nil
}

// ValidateIndicators rejects empty catalogues, blank fields and duplicate names
func ValidateIndicators(indicators []Indicator) error {
	if len(indicators) == 0 {
		return errors.New("catalogue is empty")
	}
	seen := make(map[string]bool, len(indicators))
	for i, ind := range indicators {
		if strings.TrimSpace(ind.Name) == "" {
			return fmt.Errorf("indicator %d has no name", i)
		}
		if strings.TrimSpace(ind.File) == "" || strings.TrimSpace(ind.Column) == "" {
			return fmt.Errorf("indicator %q needs both file and column", ind.Name)
		}
		if seen[ind.Name] {
			return fmt.Errorf("duplicate indicator %q", ind.Name)
		}
		seen[ind.Name] = true
	}
	return nil
}
