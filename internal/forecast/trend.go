package forecast

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultIntervalWidth is the coverage of the symmetric uncertainty band.
const DefaultIntervalWidth = 0.8

// Observation is one cleaned (timestamp, value) pair.
type Observation struct {
	Time  time.Time
	Value float64
}

// TrendFit is a linear trend over fractional years with a residual-based
// prediction interval.
type TrendFit struct {
	Slope          float64 `json:"slope_per_year"`
	Intercept      float64 `json:"intercept"`
	RSquared       float64 `json:"r_squared"`
	ResidualStdDev float64 `json:"residual_std_dev"`
	Observations   int     `json:"observations"`
	IntervalWidth  float64 `json:"interval_width"`

	meanX float64
	sxx   float64
	z     float64
}

// FitTrend fits obs by ordinary least squares. A single observation, or
// observations that all share one timestamp, yield a flat trend.
func FitTrend(obs []Observation, intervalWidth float64) *TrendFit {
	if intervalWidth <= 0 || intervalWidth >= 1 {
		intervalWidth = DefaultIntervalWidth
	}

	n := len(obs)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, o := range obs {
		xs[i] = fractionalYear(o.Time)
		ys[i] = o.Value
	}

	fit := &TrendFit{
		Observations:  n,
		IntervalWidth: intervalWidth,
		z:             distuv.UnitNormal.Quantile(0.5 + intervalWidth/2),
	}
	if n == 0 {
		return fit
	}

	fit.meanX = stat.Mean(xs, nil)
	for _, x := range xs {
		fit.sxx += (x - fit.meanX) * (x - fit.meanX)
	}

	if fit.sxx == 0 {
		fit.Intercept = stat.Mean(ys, nil)
		if n > 1 {
			fit.ResidualStdDev = stat.StdDev(ys, nil)
		}
		fit.RSquared = 0
		return fit
	}

	// Intercept is relative to year zero; slope is per year.
	fit.Intercept, fit.Slope = stat.LinearRegression(xs, ys, nil, false)

	ssRes := 0.0
	for i := range xs {
		r := ys[i] - fit.at(xs[i])
		ssRes += r * r
	}
	if dof := n - 2; dof > 0 {
		fit.ResidualStdDev = math.Sqrt(ssRes / float64(dof))
	}

	if stat.Variance(ys, nil) == 0 {
		fit.RSquared = 1
	} else {
		fit.RSquared = stat.RSquared(xs, ys, nil, fit.Intercept, fit.Slope)
	}

	return fit
}

func (f *TrendFit) at(x float64) float64 {
	return f.Intercept + f.Slope*x
}

// Predict returns the point estimate and band at t.
func (f *TrendFit) Predict(t time.Time) (estimate, lower, upper float64) {
	x := fractionalYear(t)
	estimate = f.at(x)

	if f.Observations == 0 || f.ResidualStdDev == 0 {
		return estimate, estimate, estimate
	}

	n := float64(f.Observations)
	spread := 1 + 1/n
	if f.sxx > 0 {
		spread += (x - f.meanX) * (x - f.meanX) / f.sxx
	}
	half := f.z * f.ResidualStdDev * math.Sqrt(spread)
	return estimate, estimate - half, estimate + half
}

// projectTrend produces the historical fit points strictly before the
// anchor year followed by years+1 future points starting at the anchor.
func projectTrend(fit *TrendFit, obs []Observation, anchorYear, years int) []Point {
	anchor := yearStart(anchorYear)

	seen := make(map[time.Time]bool, len(obs))
	var history []time.Time
	for _, o := range obs {
		if !o.Time.Before(anchor) || seen[o.Time] {
			continue
		}
		seen[o.Time] = true
		history = append(history, o.Time)
	}
	sort.Slice(history, func(i, j int) bool { return history[i].Before(history[j]) })

	points := make([]Point, 0, len(history)+years+1)
	for _, t := range history {
		est, lo, hi := fit.Predict(t)
		points = append(points, Point{Timestamp: t, Estimate: est, Lower: lo, Upper: hi, Historical: true})
	}
	for k := 0; k <= years; k++ {
		t := yearStart(anchorYear + k)
		est, lo, hi := fit.Predict(t)
		points = append(points, Point{Timestamp: t, Estimate: est, Lower: lo, Upper: hi})
	}
	return points
}

func yearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// fractionalYear maps t to year + elapsed fraction of that year.
func fractionalYear(t time.Time) float64 {
	t = t.UTC()
	start := yearStart(t.Year())
	end := yearStart(t.Year() + 1)
	return float64(t.Year()) + float64(t.Sub(start))/float64(end.Sub(start))
}
