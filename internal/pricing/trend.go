package pricing

import (
	"math"

	"github.com/guttosm/mandipulse/internal/domain/models"
)

// PctChange returns the percentage change from prev to curr.
//
// ok is false when either value is NaN or infinite, or prev is zero.
func PctChange(curr, prev float64) (pct float64, ok bool) {
	if !isFinite(curr) || !isFinite(prev) || prev == 0 {
		return 0, false
	}
	return ((curr - prev) / prev) * 100, true
}

// BuildTrend wraps an ascending series with its latest/previous points and the
// change between them.
func BuildTrend(points []models.PricePoint) *models.Trend {
	t := &models.Trend{Points: points}
	n := len(points)
	if n == 0 {
		return t
	}
	latest := points[n-1]
	t.Latest = &latest
	if n < 2 {
		return t
	}
	prev := points[n-2]
	t.Previous = &prev
	if pct, ok := PctChange(latest.ModalAvg, prev.ModalAvg); ok {
		t.ChangePct = &pct
	}
	return t
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
