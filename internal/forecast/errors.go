package forecast

import "fmt"

// Kind classifies resolver failures.
type Kind int

const (
	KindDatasetNotFound Kind = iota
	KindNoValidSeriesData
	KindUnresolvableColumns
	KindInvalidHorizon
)

func (k Kind) String() string {
	switch k {
	case KindDatasetNotFound:
		return "DATASET_NOT_FOUND"
	case KindNoValidSeriesData:
		return "NO_VALID_SERIES_DATA"
	case KindUnresolvableColumns:
		return "UNRESOLVABLE_COLUMNS"
	case KindInvalidHorizon:
		return "INVALID_HORIZON"
	default:
		return "UNKNOWN"
	}
}

// Error is a typed resolver failure carrying enough context for a caller to
// report a per-indicator skip. None of the kinds are retryable without caller
// intervention.
type Error struct {
	Kind    Kind   `json:"kind"`
	Dataset string `json:"dataset,omitempty"`
	Column  string `json:"column,omitempty"`
	Path    string `json:"path,omitempty"`
	Err     error  `json:"-"`
}

// Sentinels for errors.Is matching. Only Kind is compared.
var (
	ErrDatasetNotFound     = &Error{Kind: KindDatasetNotFound}
	ErrNoValidSeriesData   = &Error{Kind: KindNoValidSeriesData}
	ErrUnresolvableColumns = &Error{Kind: KindUnresolvableColumns}
	ErrInvalidHorizon      = &Error{Kind: KindInvalidHorizon}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindDatasetNotFound:
		return fmt.Sprintf("dataset not found: %s", e.Path)
	case KindNoValidSeriesData:
		return fmt.Sprintf("no valid time-series rows in %s for column %s", e.Dataset, e.Column)
	case KindUnresolvableColumns:
		return fmt.Sprintf("%s does not contain a time-series %q or a current value column", e.Dataset, e.Column)
	case KindInvalidHorizon:
		return fmt.Sprintf("invalid horizon for %s: %v", e.Dataset, e.Err)
	default:
		return fmt.Sprintf("forecast error for %s", e.Dataset)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
