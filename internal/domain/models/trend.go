package models

// Trend represents the daily modal-price series for a query together with
// the change between its two most recent observations.
//
// Fields:
//   - Points: The per-day averages, sorted ascending by date.
//   - Latest: The most recent point, nil when the series is empty.
//   - Previous: The point before Latest, nil when fewer than two points exist.
//   - ChangePct: Percentage change from Previous to Latest; nil when it
//     cannot be computed (missing points, zero baseline, non-finite values).
//
// This model is returned by the API when querying /api/prices/series.
//
// swagger:model Trend
type Trend struct {
	Points    []PricePoint `json:"points"`
	Latest    *PricePoint  `json:"latest"`
	Previous  *PricePoint  `json:"previous"`
	ChangePct *float64     `json:"change_pct" example:"4.5"`
}
