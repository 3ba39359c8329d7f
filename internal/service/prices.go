package service

import (
	"context"

	"github.com/guttosm/mandipulse/internal/agmarknet"
	"github.com/guttosm/mandipulse/internal/domain/models"
	"github.com/guttosm/mandipulse/internal/pricing"
)

// PriceService composes the market-price pipeline:
// fetch, date-range filter, aggregate by date, and trend.
type PriceService interface {
	// GetPrices returns the per-day modal average series for q.
	GetPrices(ctx context.Context, q models.PriceQuery) ([]models.PricePoint, error)
	// GetRecords returns the raw upstream rows inside q's date window.
	GetRecords(ctx context.Context, q models.PriceQuery) ([]models.PriceRecord, error)
	// GetTrend returns the series with its latest/previous points and change.
	GetTrend(ctx context.Context, q models.PriceQuery) (*models.Trend, error)
}

type priceService struct {
	fetcher agmarknet.Fetcher
}

func NewPriceService(f agmarknet.Fetcher) PriceService {
	return &priceService{fetcher: f}
}

func (s *priceService) GetPrices(ctx context.Context, q models.PriceQuery) ([]models.PricePoint, error) {
	records, err := s.GetRecords(ctx, q)
	if err != nil {
		return nil, err
	}
	return pricing.GroupByDateAverage(records), nil
}

func (s *priceService) GetRecords(ctx context.Context, q models.PriceQuery) ([]models.PriceRecord, error) {
	q = q.WithDefaults()
	if err := validateRange(q); err != nil {
		return nil, err
	}
	records, err := s.fetcher.Fetch(ctx, q)
	if err != nil {
		return nil, err
	}
	return pricing.FilterByRange(records, q.From, q.To), nil
}

func (s *priceService) GetTrend(ctx context.Context, q models.PriceQuery) (*models.Trend, error) {
	points, err := s.GetPrices(ctx, q)
	if err != nil {
		return nil, err
	}
	return pricing.BuildTrend(points), nil
}

// validateRange rejects bounds that are not strict YYYY-MM-DD before any
// network call is made.
func validateRange(q models.PriceQuery) error {
	if q.From != "" {
		if err := pricing.ValidateISODate(q.From); err != nil {
			return err
		}
	}
	if q.To != "" {
		if err := pricing.ValidateISODate(q.To); err != nil {
			return err
		}
	}
	return nil
}
