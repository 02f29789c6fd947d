package state

import (
	"math"
	"strconv"
	"strings"
	"sync"
)

// DataFrame represents a loaded indicator dataset
type DataFrame struct {
	Headers  []string
	Rows     [][]string
	FilePath string
	FileName string
}

// nullTokens are cell values treated as missing
var nullTokens = map[string]bool{
	"":     true,
	"null": true,
	"NULL": true,
	"NaN":  true,
	"nan":  true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"None": true,
}

// IsNull reports whether a raw cell value represents a missing value
func IsNull(v string) bool {
	return nullTokens[strings.TrimSpace(v)]
}

// ParseFloat parses a cell as a float, treating null tokens as absent
func ParseFloat(v string) (float64, bool) {
	if IsNull(v) {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Cell returns the value at row/col, or "" when the row is short
func (df *DataFrame) Cell(row, col int) string {
	if row < 0 || row >= len(df.Rows) || col < 0 || col >= len(df.Rows[row]) {
		return ""
	}
	return df.Rows[row][col]
}

// Column returns a copy of all values in a column
func (df *DataFrame) Column(col int) []string {
	values := make([]string, len(df.Rows))
	for i := range df.Rows {
		values[i] = df.Cell(i, col)
	}
	return values
}

// LastFloat returns the last non-null numeric value of a column
func (df *DataFrame) LastFloat(col int) (float64, bool) {
	for i := len(df.Rows) - 1; i >= 0; i-- {
		if f, ok := ParseFloat(df.Cell(i, col)); ok {
			return f, true
		}
	}
	return 0, false
}

// Clone returns a deep copy so callers can derive cleaned views safely
func (df *DataFrame) Clone() *DataFrame {
	headers := make([]string, len(df.Headers))
	copy(headers, df.Headers)

	rows := make([][]string, len(df.Rows))
	for i, r := range df.Rows {
		row := make([]string, len(r))
		copy(row, r)
		rows[i] = row
	}

	return &DataFrame{
		Headers:  headers,
		Rows:     rows,
		FilePath: df.FilePath,
		FileName: df.FileName,
	}
}

// GetNumericColumnIndices returns indices of numeric columns
func (df *DataFrame) GetNumericColumnIndices() map[int]bool {
	if len(df.Rows) == 0 {
		return nil
	}

	numericCols := make(map[int]bool)
	for colIdx := range df.Headers {
		isNumeric := true
		seen := 0
		// Check first 20 rows (or all if fewer)
		checkRows := 20
		if len(df.Rows) < checkRows {
			checkRows = len(df.Rows)
		}
		for i := 0; i < checkRows; i++ {
			val := df.Cell(i, colIdx)
			if IsNull(val) {
				continue
			}
			if !isNumericString(strings.TrimSpace(val)) {
				isNumeric = false
				break
			}
			seen++
		}
		if isNumeric && seen > 0 {
			numericCols[colIdx] = true
		}
	}
	return numericCols
}

func isNumericString(s string) bool {
	if s == "" {
		return false
	}
	dotCount := 0
	for i, c := range s {
		if c == '-' && i == 0 {
			continue
		}
		if c == '.' {
			dotCount++
			if dotCount > 1 {
				return false
			}
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// AdvisorSettings holds the runtime-adjustable advisor endpoint
type AdvisorSettings struct {
	Provider string `json:"provider"`
	BaseURL  string `json:"baseUrl"`
	Model    string `json:"model"`
}

// AppState holds mutable server state shared between handlers
type AppState struct {
	mu      sync.RWMutex
	advisor AdvisorSettings
}

// NewAppState creates state seeded with the configured advisor settings
func NewAppState(advisor AdvisorSettings) *AppState {
	return &AppState{advisor: advisor}
}

// Advisor returns the current advisor settings
func (s *AppState) Advisor() AdvisorSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.advisor
}

// SetAdvisor replaces the advisor settings
func (s *AppState) SetAdvisor(a AdvisorSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advisor = a
}
