package models

// HealthResponse is returned by /health
type HealthResponse struct {
	Status  string `json:"status"`
	DataDir string `json:"data_dir"`
	Archive bool   `json:"archive"`
	Advisor string `json:"advisor"`
}

// ErrorResponse is the JSON body of every non-2xx API response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Dataset string `json:"dataset,omitempty"`
	Column  string `json:"column,omitempty"`
}

// ColumnStats summarises one numeric column
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// ColumnQuality holds completeness metrics for a column
type ColumnQuality struct {
	Column        string  `json:"column"`
	TotalRows     int     `json:"total_rows"`
	NonNullRows   int     `json:"non_null_rows"`
	NullRate      float64 `json:"null_rate"`
	DistinctCount int     `json:"distinct_count"`
	Entropy       float64 `json:"entropy"`
	QualityScore  float64 `json:"quality_score"` // 0-1
}

// DatasetInspection describes a loaded dataset and how the forecaster
// would read it
type DatasetInspection struct {
	FileName       string            `json:"file_name,omitempty"`
	NumRows        int               `json:"num_rows"`
	NumColumns     int               `json:"num_columns"`
	ColumnNames    []string          `json:"column_names"`
	ColumnTypes    map[string]string `json:"column_types"`
	NumericColumns []string          `json:"numeric_columns"`
	PotentialDates []string          `json:"potential_dates"`
	DateColumn     string            `json:"date_column,omitempty"`
	CurrentColumn  string            `json:"current_column,omitempty"`
	TargetColumn   string            `json:"target_column,omitempty"`
	Stats          []ColumnStats     `json:"stats"`
	Quality        []ColumnQuality   `json:"quality"`
}

// AdvisorConfig for /config/advisor endpoint
type AdvisorConfig struct {
	Provider string `json:"provider"`
	BaseURL  string `json:"baseUrl"`
	Model    string `json:"model"`
}

// ForecastQuery mirrors the query parameters of /api/forecast
type ForecastQuery struct {
	File   string `json:"file"`
	Column string `json:"column"`
	Years  int    `json:"years"`
}

// OutlookRequest for /api/outlook
type OutlookRequest struct {
	Years   int    `json:"years"`
	Country string `json:"country"`
}
