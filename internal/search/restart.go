package search

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/napolitain/solver-simco/internal/models"
	"github.com/napolitain/solver-simco/internal/objective"
)

// RunRestarts performs independent runs, run r using seed opts.Seed + r, at
// most concurrent at a time. Runs are returned in restart order.
func RunRestarts(ctx context.Context, cat Catalog, prices PriceHistory, opts Options, restarts, concurrent int) ([]*Result, error) {
	if restarts <= 0 {
		restarts = 1
	}
	if concurrent <= 0 {
		concurrent = 1
	}

	runs := make([]*Result, restarts)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrent)
	for r := 0; r < restarts; r++ {
		runOpts := opts
		runOpts.Seed = opts.Seed + int64(r)
		if opts.Logger != nil {
			runOpts.Logger = opts.Logger.With("restart", r)
		}
		g.Go(func() error {
			opt, err := New(cat, prices, runOpts)
			if err != nil {
				return fmt.Errorf("restart %d: %w", r, err)
			}
			res, err := opt.Run(gctx)
			runs[r] = res
			if err != nil {
				return fmt.Errorf("restart %d: %w", r, err)
			}
			return nil
		})
	}
	err := g.Wait()
	return runs, err
}

// Bests returns the best result of every run that produced one
func Bests(runs []*Result) []*models.ProductionStatistic {
	var out []*models.ProductionStatistic
	for _, r := range runs {
		if b := r.Best(); b != nil {
			out = append(out, b)
		}
	}
	return out
}

// BestOf picks the best result across runs with the objective ranking
func BestOf(runs []*Result, obj models.Objective) *models.ProductionStatistic {
	return objective.Best(Bests(runs), obj)
}
