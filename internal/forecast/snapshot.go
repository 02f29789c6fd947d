package forecast

// projectFlat repeats value for years+1 yearly points starting at the anchor
// year. No model is involved: this states "assume no change".
func projectFlat(value float64, anchorYear, years int) []Point {
	points := make([]Point, 0, years+1)
	for k := 0; k <= years; k++ {
		points = append(points, Point{
			Timestamp: yearStart(anchorYear + k),
			Estimate:  value,
			Lower:     value,
			Upper:     value,
		})
	}
	return points
}
