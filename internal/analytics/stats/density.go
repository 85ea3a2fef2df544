package stats

import "math"

const (
	// DensityScale stretches the normal pdf so the curve is readable on a 0-10 score axis.
	DensityScale = 50.0

	MinScore  = 0.0
	MaxScore  = 10.0
	GridSteps = 100
)

// Point is one sample of the distribution curve.
type Point struct {
	Score   float64 `json:"score"`
	Density float64 `json:"density"`
}

// DensityCurve samples the scaled normal density N(mean, sd) at 0.0, 0.1, ..., 10.0.
//
// A degenerate sd (zero, negative, NaN or Inf) yields a single spike of height DensityScale at
// the grid point closest to the mean clamped into the score range. No point is ever NaN or Inf.
func DensityCurve(mean, sd float64) []Point {
	points := make([]Point, GridSteps+1)
	for i := range points {
		points[i].Score = gridScore(i)
	}

	if math.IsNaN(mean) || math.IsInf(mean, 0) {
		return points
	}

	if sd <= 0 || math.IsNaN(sd) || math.IsInf(sd, 0) {
		peak := int(math.Round(clamp(mean, MinScore, MaxScore) / MaxScore * GridSteps))
		points[peak].Density = DensityScale
		return points
	}

	norm := DensityScale / (sd * math.Sqrt(2*math.Pi))
	for i := range points {
		z := (points[i].Score - mean) / sd
		points[i].Density = norm * math.Exp(-0.5*z*z)
	}
	return points
}

func gridScore(i int) float64 {
	return Round(MinScore+float64(i)*(MaxScore-MinScore)/GridSteps, 1)
}
