package dto

import "github.com/guttosm/mandipulse/internal/domain/models"

// RecordsResponse is returned by GET /api/prices.
//
// Records are the upstream rows that survived the date window, unchanged.
type RecordsResponse struct {
	Records []models.PriceRecord `json:"records"`
}

// SeriesResponse is returned by GET /api/prices/series.
type SeriesResponse struct {
	Points    []models.PricePoint `json:"points"`
	Latest    *models.PricePoint  `json:"latest"`
	Previous  *models.PricePoint  `json:"previous"`
	ChangePct *float64            `json:"change_pct" example:"4.5"`
}

// NewSeriesResponse maps a trend onto the response DTO.
// Points is never serialized as null.
func NewSeriesResponse(t *models.Trend) SeriesResponse {
	if t == nil {
		return SeriesResponse{Points: []models.PricePoint{}}
	}
	points := t.Points
	if points == nil {
		points = []models.PricePoint{}
	}
	return SeriesResponse{
		Points:    points,
		Latest:    t.Latest,
		Previous:  t.Previous,
		ChangePct: t.ChangePct,
	}
}
