// Package forecast turns an indicator dataset into a forward projection.
//
// A dataset is classified into one of two regimes before forecasting:
//
//   - time series: a year/date column and the requested metric column both
//     resolve. A linear trend is fitted and extended year by year with an
//     80% band.
//   - snapshot: no usable date column but a current value column. The last
//     non-null current value is repeated with a zero-width band.
//
// Everything else fails with ErrUnresolvableColumns. The resolver keeps no
// state between calls and is safe for concurrent use.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"forecast-go/internal/dataset"
	"forecast-go/internal/state"

	"github.com/rs/zerolog/log"
)

// Resolver dispatches forecast requests to the strategy matching the
// dataset's regime.
type Resolver struct {
	source        dataset.Source
	now           func() time.Time
	intervalWidth float64
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock overrides the clock used to find the current year.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithIntervalWidth sets the band coverage, e.g. 0.8 for 80%.
func WithIntervalWidth(w float64) Option {
	return func(r *Resolver) {
		r.intervalWidth = w
	}
}

func NewResolver(source dataset.Source, opts ...Option) *Resolver {
	r := &Resolver{
		source:        source,
		now:           time.Now,
		intervalWidth: DefaultIntervalWidth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Source exposes the backing dataset source.
func (r *Resolver) Source() dataset.Source {
	return r.source
}

// MaxHorizonYears bounds how far ahead a single forecast may project.
const MaxHorizonYears = 100

func checkHorizon(ref, metric string, years int) error {
	if years < 0 || years > MaxHorizonYears {
		return &Error{Kind: KindInvalidHorizon, Dataset: ref, Column: metric,
			Err: fmt.Errorf("years must be between 0 and %d, got %d", MaxHorizonYears, years)}
	}
	return nil
}

// Forecast loads ref and projects metric years ahead.
func (r *Resolver) Forecast(ctx context.Context, ref, metric string, years int) (*Result, error) {
	if err := checkHorizon(ref, metric, years); err != nil {
		return nil, err
	}

	df, err := r.Load(ctx, ref)
	if err != nil {
		return nil, err
	}
	return r.ForecastFrame(ctx, ref, df, metric, years)
}

// Load reads ref through the source, translating a missing backing file or
// table into ErrDatasetNotFound.
func (r *Resolver) Load(ctx context.Context, ref string) (*state.DataFrame, error) {
	df, err := r.source.Load(ctx, ref)
	if err != nil {
		if errors.Is(err, dataset.ErrNotFound) {
			return nil, &Error{Kind: KindDatasetNotFound, Dataset: ref, Path: r.source.Location(ref), Err: err}
		}
		return nil, fmt.Errorf("failed to load %s: %w", ref, err)
	}
	return df, nil
}

// ForecastFrame forecasts an already loaded dataset. df is not modified.
func (r *Resolver) ForecastFrame(ctx context.Context, ref string, df *state.DataFrame, metric string, years int) (*Result, error) {
	if err := checkHorizon(ref, metric, years); err != nil {
		return nil, err
	}

	det := DetectRegime(df, metric)
	log.Debug().
		Str("dataset", ref).
		Str("metric", metric).
		Stringer("regime", det.Regime).
		Msg("Regime detected")

	anchorYear := r.now().Year()

	switch det.Regime {
	case RegimeTimeSeries:
		obs, strategy, dropped := cleanSeries(df, det)
		if strategy == DateStrategyLenient {
			log.Debug().Str("dataset", ref).Str("column", det.Date.Name).Msg("Strict year parsing failed, reparsed leniently")
		}
		if len(obs) == 0 {
			return nil, &Error{Kind: KindNoValidSeriesData, Dataset: ref, Column: metric}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fit := FitTrend(obs, r.intervalWidth)
		return &Result{
			Dataset:      ref,
			Metric:       metric,
			Column:       det.Metric.Name,
			Regime:       RegimeTimeSeries,
			DateStrategy: strategy.String(),
			RowsUsed:     len(obs),
			RowsDropped:  dropped,
			Fit:          fit,
			Points:       projectTrend(fit, obs, anchorYear, years),
		}, nil

	case RegimeSnapshot:
		value, ok := df.LastFloat(det.Current.Index)
		if !ok {
			return nil, &Error{Kind: KindNoValidSeriesData, Dataset: ref, Column: det.Current.Name}
		}
		return &Result{
			Dataset:  ref,
			Metric:   metric,
			Column:   det.Current.Name,
			Regime:   RegimeSnapshot,
			RowsUsed: 1,
			Points:   projectFlat(value, anchorYear, years),
		}, nil

	default:
		return nil, &Error{Kind: KindUnresolvableColumns, Dataset: ref, Column: metric}
	}
}

// cleanSeries drops rows with a missing date or metric, parses the remaining
// dates as a column and returns the surviving observations in time order.
func cleanSeries(df *state.DataFrame, det Detection) ([]Observation, DateStrategy, int) {
	var rawDates []string
	var values []float64
	for i := range df.Rows {
		rawDate := df.Cell(i, det.Date.Index)
		v, ok := state.ParseFloat(df.Cell(i, det.Metric.Index))
		if state.IsNull(rawDate) || !ok {
			continue
		}
		rawDates = append(rawDates, rawDate)
		values = append(values, v)
	}

	parsed := ParseDates(rawDates)
	obs := make([]Observation, 0, len(values))
	for i, v := range values {
		if !parsed.Valid[i] {
			continue
		}
		obs = append(obs, Observation{Time: parsed.Times[i], Value: v})
	}

	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Time.Before(obs[j].Time) })
	return obs, parsed.Strategy, len(df.Rows) - len(obs)
}
