package forecast

import "time"

// Point is one forecast row.
type Point struct {
	Timestamp  time.Time `json:"ds"`
	Estimate   float64   `json:"yhat"`
	Lower      float64   `json:"yhat_lower"`
	Upper      float64   `json:"yhat_upper"`
	Historical bool      `json:"historical"`
}

// Result is an immutable forecast: historical fit points (time-series only)
// followed by the future segment, in strictly increasing time order.
type Result struct {
	Dataset      string    `json:"dataset"`
	Metric       string    `json:"metric"`
	Column       string    `json:"column"`
	Regime       Regime    `json:"regime"`
	DateStrategy string    `json:"date_strategy,omitempty"`
	RowsUsed     int       `json:"rows_used"`
	RowsDropped  int       `json:"rows_dropped"`
	Fit          *TrendFit `json:"fit,omitempty"`
	Points       []Point   `json:"points"`
}

// History returns the historical fit points.
func (r *Result) History() []Point {
	n := 0
	for n < len(r.Points) && r.Points[n].Historical {
		n++
	}
	return append([]Point(nil), r.Points[:n]...)
}

// Future returns the projected points.
func (r *Result) Future() []Point {
	n := 0
	for n < len(r.Points) && r.Points[n].Historical {
		n++
	}
	return append([]Point(nil), r.Points[n:]...)
}

// Final returns the last projected point.
func (r *Result) Final() (Point, bool) {
	if len(r.Points) == 0 {
		return Point{}, false
	}
	return r.Points[len(r.Points)-1], true
}
