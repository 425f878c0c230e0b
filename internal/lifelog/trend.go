package lifelog

import "github.com/jkor2/lifeof/internal/model"

// Resting-HR colour bands of the HRV vs recovery scatter.
const (
	BandHigh     = "high"
	BandElevated = "elevated"
	BandNormal   = "normal"
)

type Point struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Band string  `json:"band,omitempty"`
}

type Trend struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	Start     Point   `json:"start"`
	End       Point   `json:"end"`
}

// ScatterPoints pairs HRV (x) with recovery score (y), skipping records
// where either is missing or zero.
func ScatterPoints(trend []model.RecoveryPoint) []Point {
	var pts []Point
	for _, r := range trend {
		if !present(r.HRV) || !present(r.RecoveryScore) {
			continue
		}
		pts = append(pts, Point{X: *r.HRV, Y: *r.RecoveryScore, Band: rhrBand(r.RHR)})
	}
	return pts
}

func rhrBand(rhr *float64) string {
	switch {
	case rhr != nil && *rhr > 60:
		return BandHigh
	case rhr != nil && *rhr > 55:
		return BandElevated
	default:
		return BandNormal
	}
}

// FitTrend computes the least-squares line through points and returns its
// endpoints at min(x) and max(x). ok is false with fewer than two points or
// when every x is equal.
func FitTrend(points []Point) (t Trend, ok bool) {
	if len(points) < 2 {
		return Trend{}, false
	}

	var sumX, sumY, sumXY, sumX2 float64
	minX, maxX := points[0].X, points[0].X
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
		sumXY += p.X * p.Y
		sumX2 += p.X * p.X
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
	}
	if minX == maxX {
		return Trend{}, false
	}

	n := float64(len(points))
	slope := (n*sumXY - sumX*sumY) / (n*sumX2 - sumX*sumX)
	intercept := (sumY - slope*sumX) / n

	return Trend{
		Slope:     slope,
		Intercept: intercept,
		Start:     Point{X: minX, Y: slope*minX + intercept},
		End:       Point{X: maxX, Y: slope*maxX + intercept},
	}, true
}

func present(v *float64) bool { return v != nil && *v != 0 }
