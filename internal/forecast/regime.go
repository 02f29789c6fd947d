package forecast

import (
	"fmt"

	"forecast-go/internal/state"
)

// Regime is the structural shape a dataset is classified into.
type Regime int

const (
	RegimeUnresolvable Regime = iota
	RegimeTimeSeries
	RegimeSnapshot
)

func (r Regime) String() string {
	switch r {
	case RegimeTimeSeries:
		return "time_series"
	case RegimeSnapshot:
		return "snapshot"
	default:
		return "unresolvable"
	}
}

func (r Regime) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Regime) UnmarshalText(text []byte) error {
	switch string(text) {
	case "time_series":
		*r = RegimeTimeSeries
	case "snapshot":
		*r = RegimeSnapshot
	case "unresolvable":
		*r = RegimeUnresolvable
	default:
		return fmt.Errorf("unknown regime %q", text)
	}
	return nil
}

// Detection is the outcome of regime detection with the columns that
// justified it.
type Detection struct {
	Regime  Regime
	Date    Column
	Metric  Column
	Current Column
}

// DetectRegime classifies df for the given metric. TimeSeries is tried first,
// so a dataset carrying both a date column and a current value column is
// always a time series.
func DetectRegime(df *state.DataFrame, metric string) Detection {
	r := NewColumnResolver(df.Headers)
	det := Detection{
		Date:    Column{Index: -1},
		Metric:  Column{Index: -1},
		Current: Column{Index: -1},
	}

	date, hasDate := r.Resolve(DateAliases...)
	col, hasMetric := r.Resolve(metric)
	if hasDate && hasMetric {
		det.Regime = RegimeTimeSeries
		det.Date = date
		det.Metric = col
		return det
	}

	if cur, ok := r.Resolve(CurrentValueAliases...); ok {
		det.Regime = RegimeSnapshot
		det.Current = cur
		return det
	}

	det.Regime = RegimeUnresolvable
	return det
}
