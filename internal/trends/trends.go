// Package trends runs the price pipeline for a batch of commodities and
// optionally stores each resulting series.
package trends

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/mandipulse/internal/domain/models"
	"github.com/guttosm/mandipulse/internal/logger"
	"github.com/guttosm/mandipulse/internal/service"
	"github.com/guttosm/mandipulse/internal/storage"
)

const maxParallel = 8

// Options controls one batch run.
//
//   - Base: filters, window and paging shared by every commodity; its
//     Commodity field is overwritten per item.
//   - Parallel: concurrency limit, clamped to 1..8; 0 means min(8, NumCPU).
//   - Repo: optional sink. When nil nothing is persisted.
//   - Force: recompute commodities that already have a run for RunDate.
type Options struct {
	Commodities []string
	Base        models.PriceQuery
	Parallel    int
	Repo        storage.TrendsRepository
	Force       bool
	RunDate     time.Time
}

// Result is the outcome for one commodity, in input order.
type Result struct {
	Commodity string
	Trend     *models.Trend
	Skipped   bool
}

// Collect runs one independent pipeline per commodity with bounded
// parallelism. The first failure cancels the remaining work and is returned.
func Collect(ctx context.Context, svc service.PriceService, opts Options) ([]Result, error) {
	commodities := ParseCommodities(strings.Join(opts.Commodities, ","))
	if len(commodities) == 0 {
		return nil, fmt.Errorf("no commodities given")
	}

	limit := resolveParallel(opts.Parallel)
	runDate := truncateToDate(opts.RunDate)
	if opts.RunDate.IsZero() {
		runDate = truncateToDate(time.Now().UTC())
	}

	logger.L().Info().
		Int("commodities", len(commodities)).
		Int("max_parallel", limit).
		Str("from", opts.Base.From).
		Str("to", opts.Base.To).
		Bool("persist", opts.Repo != nil).
		Msg("trends start")

	results := make([]Result, len(commodities))

	// errgroup will cancel siblings on first error.
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, limit)

	for i, commodity := range commodities {
		idx := i
		name := commodity
		sem <- struct{}{}

		g.Go(func() error {
			defer func() { <-sem }()
			start := time.Now()
			results[idx].Commodity = name

			if opts.Repo != nil && !opts.Force {
				exists, err := opts.Repo.HasRunForDate(gctx, name, runDate)
				if err != nil {
					logger.L().Error().Str("commodity", name).Err(err).Msg("check trend runs failed")
					return fmt.Errorf("commodity %s: check trend runs: %w", name, err)
				}
				if exists {
					results[idx].Skipped = true
					logger.L().Info().Int("idx", idx+1).Int("total", len(commodities)).Str("commodity", name).Bool("skipped", true).Msg("already computed")
					return nil
				}
			}

			q := opts.Base
			q.Commodity = name
			trend, err := svc.GetTrend(gctx, q)
			if err != nil {
				logger.L().Error().Str("commodity", name).Dur("elapsed", time.Since(start)).Err(err).Msg("commodity failed")
				return fmt.Errorf("commodity %s: %w", name, err)
			}
			results[idx].Trend = trend

			if opts.Repo != nil {
				if err := opts.Repo.SaveTrend(gctx, name, runDate, trend); err != nil {
					logger.L().Error().Str("commodity", name).Err(err).Msg("save trend failed")
					return fmt.Errorf("commodity %s: save trend: %w", name, err)
				}
			}

			logTrend(idx, len(commodities), name, trend, time.Since(start))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func logTrend(idx, total int, name string, t *models.Trend, elapsed time.Duration) {
	ev := logger.L().Info().
		Int("idx", idx+1).
		Int("total", total).
		Str("commodity", name).
		Int("points", len(t.Points)).
		Dur("elapsed", elapsed)
	if t.Latest != nil {
		ev = ev.Str("latest_date", t.Latest.Date).Float64("latest_avg", t.Latest.ModalAvg)
	}
	if t.Previous != nil {
		ev = ev.Float64("previous_avg", t.Previous.ModalAvg)
	}
	if t.ChangePct != nil {
		ev = ev.Float64("change_pct", *t.ChangePct)
	}
	ev.Msg("commodity done")
}

// ParseCommodities splits a comma-separated list, trimming blanks and
// dropping exact duplicates while keeping first-seen order.
func ParseCommodities(s string) []string {
	seen := map[string]bool{}
	var out []string
	for _, part := range strings.Split(s, ",") {
		p := strings.TrimSpace(part)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func resolveParallel(parallel int) int {
	if parallel > 0 {
		if parallel > maxParallel {
			return maxParallel
		}
		return parallel
	}
	if c := runtime.NumCPU(); c < maxParallel {
		return c
	}
	return maxParallel
}
