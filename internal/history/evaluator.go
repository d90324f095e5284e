// Package history evaluates a company configuration over a series of past
// price snapshots and summarises how its profit behaved.
package history

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/napolitain/solver-simco/internal/models"
)

// Simulator is the production model run once per snapshot
type Simulator interface {
	Simulate(cfg models.CompanyConfiguration, prices models.PriceSource) (*models.ProductionStatistic, error)
}

// Evaluator computes ProfitHistory values. It keeps no state between calls.
type Evaluator struct {
	sim     Simulator
	workers int
}

// NewEvaluator creates an evaluator simulating up to workers snapshots at
// once. workers <= 0 uses GOMAXPROCS.
func NewEvaluator(sim Simulator, workers int) *Evaluator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Evaluator{sim: sim, workers: workers}
}

// Evaluate simulates cfg against every snapshot and aggregates the total
// profit samples. The first failing snapshot aborts the evaluation.
func (e *Evaluator) Evaluate(ctx context.Context, cfg models.CompanyConfiguration, snapshots []*models.PriceSnapshot) (*models.ProfitHistory, error) {
	if len(snapshots) == 0 {
		return nil, models.ErrEmptyPriceHistory
	}

	profits := make([]models.Profit, len(snapshots))
	if e.workers == 1 {
		for i, snap := range snapshots {
			p, err := e.sample(cfg, snap)
			if err != nil {
				return nil, err
			}
			profits[i] = p
		}
		return Summarize(profits)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, snap := range snapshots {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := e.sample(cfg, snap)
			if err != nil {
				return err
			}
			profits[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Summarize(profits)
}

func (e *Evaluator) sample(cfg models.CompanyConfiguration, snap *models.PriceSnapshot) (models.Profit, error) {
	stat, err := e.sim.Simulate(cfg, snap)
	if err != nil {
		return models.Profit{}, fmt.Errorf("snapshot %s: %w", snap.Timestamp.Format("2006-01-02 15:04"), err)
	}
	return models.Profit{Value: stat.TotalProfitPerHour, Timestamp: snap.Timestamp}, nil
}

// Summarize aggregates profit samples. A sample of zero or less counts as a loss.
func Summarize(profits []models.Profit) (*models.ProfitHistory, error) {
	if len(profits) == 0 {
		return nil, models.ErrEmptyPriceHistory
	}

	values := make([]float64, len(profits))
	h := &models.ProfitHistory{Profits: profits}
	for i, p := range profits {
		values[i] = p.Value
		if p.Value <= 0 {
			h.CountIterationsWithLoss++
		} else {
			h.CountIterationsWithProfit++
		}
	}
	h.AvgProfitPerHour = stat.Mean(values, nil)
	h.MinProfitPerHour = floats.Min(values)
	h.MaxProfitPerHour = floats.Max(values)
	h.LossPercentage = float64(h.CountIterationsWithLoss) / float64(len(profits)) * 100
	return h, nil
}
