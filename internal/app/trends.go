package app

import (
	"context"
	"fmt"
	"time"

	"github.com/guttosm/mandipulse/config"
	"github.com/guttosm/mandipulse/internal/agmarknet"
	"github.com/guttosm/mandipulse/internal/domain/models"
	"github.com/guttosm/mandipulse/internal/service"
	"github.com/guttosm/mandipulse/internal/storage"
	"github.com/guttosm/mandipulse/internal/trends"
)

// TrendsInput carries the command-line options of the trends mode.
type TrendsInput struct {
	Commodities  string // comma-separated
	State        string
	Market       string
	LookbackDays int
	Parallel     int
	Persist      bool
	Force        bool
	Now          time.Time
}

// RunTrends computes the latest price trend for every requested commodity.
// With Persist set, results are written to Postgres and commodities already
// computed today are skipped unless Force is set.
func RunTrends(ctx context.Context, cfg config.Config, in TrendsInput) ([]trends.Result, error) {
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	from, to := trends.LookbackWindow(in.LookbackDays, now)

	client := agmarknet.NewClient(agmarknet.Config{
		APIKey:     cfg.DataGov.APIKey,
		BaseURL:    cfg.DataGov.BaseURL,
		ResourceID: cfg.DataGov.ResourceID,
		Timeout:    cfg.DataGov.Timeout,
	})

	opts := trends.Options{
		Commodities: []string{in.Commodities},
		Base:        models.PriceQuery{State: in.State, Market: in.Market, From: from, To: to},
		Parallel:    in.Parallel,
		Force:       in.Force,
		RunDate:     now,
	}

	if in.Persist {
		db, err := postgresOpener(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres: %w", err)
		}
		defer func() { _ = db.Close() }()
		opts.Repo = storage.NewTrendsRepository(db)
	}

	return trends.Collect(ctx, service.NewPriceService(client), opts)
}
