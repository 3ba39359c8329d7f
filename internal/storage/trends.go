package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/guttosm/mandipulse/internal/domain/models"
	pq "github.com/lib/pq"
)

// TrendsRepository persists the output of the trends batch mode.
type TrendsRepository interface {
	SaveTrend(ctx context.Context, commodity string, runDate time.Time, trend *models.Trend) error
	HasRunForDate(ctx context.Context, commodity string, runDate time.Time) (bool, error)
}

type trendsRepository struct {
	db *sql.DB
}

func NewTrendsRepository(db *sql.DB) TrendsRepository {
	return &trendsRepository{db: db}
}

// SaveTrend replaces the stored series for commodity with trend.Points and
// records a trend_runs row for runDate, all in one transaction.
func (r *trendsRepository) SaveTrend(ctx context.Context, commodity string, runDate time.Time, trend *models.Trend) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM price_points WHERE commodity = $1`, commodity); err != nil {
		_ = tx.Rollback()
		return err
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("price_points", "commodity", "price_date", "modal_avg"))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, p := range trend.Points {
		d, err := time.Parse(time.DateOnly, p.Date)
		if err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx, commodity, d, p.ModalAvg); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}

	var latest, previous sql.NullFloat64
	if trend.Latest != nil {
		latest = sql.NullFloat64{Float64: trend.Latest.ModalAvg, Valid: true}
	}
	if trend.Previous != nil {
		previous = sql.NullFloat64{Float64: trend.Previous.ModalAvg, Valid: true}
	}
	var change sql.NullFloat64
	if trend.ChangePct != nil {
		change = sql.NullFloat64{Float64: *trend.ChangePct, Valid: true}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO trend_runs (commodity, run_date, point_count, latest_avg, previous_avg, change_pct)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (commodity, run_date)
		DO UPDATE SET point_count = EXCLUDED.point_count,
					  latest_avg = EXCLUDED.latest_avg,
					  previous_avg = EXCLUDED.previous_avg,
					  change_pct = EXCLUDED.change_pct,
					  computed_at = NOW()
	`, commodity, runDate, len(trend.Points), latest, previous, change); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// HasRunForDate checks whether commodity was already computed on runDate.
func (r *trendsRepository) HasRunForDate(ctx context.Context, commodity string, runDate time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM trend_runs WHERE commodity = $1 AND run_date = $2)`,
		commodity, runDate,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}
