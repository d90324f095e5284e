package search

import (
	"context"
	"fmt"

	"github.com/napolitain/solver-simco/internal/models"
	"github.com/napolitain/solver-simco/internal/objective"
)

// SweepLevels evaluates a company running only id at every level from 1 to
// maxLevel and returns all results in level order along with the best one.
func (o *Optimizer) SweepLevels(ctx context.Context, id models.ResourceID, maxLevel int) ([]*models.ProductionStatistic, *models.ProductionStatistic, error) {
	if maxLevel <= 0 {
		return nil, nil, fmt.Errorf("%w: max level must be positive", models.ErrInvalidConfiguration)
	}
	if _, err := o.catalog.Get(id); err != nil {
		return nil, nil, err
	}

	results := make([]*models.ProductionStatistic, 0, maxLevel)
	var best *models.ProductionStatistic
	for level := 1; level <= maxLevel; level++ {
		if err := ctx.Err(); err != nil {
			return results, best, err
		}
		cfg := o.opts.Company
		cfg.Seed = o.opts.Seed
		cfg.BuildingsPerResource = map[models.ResourceID]int{id: level}

		stat, err := o.sim.Simulate(cfg, o.latest)
		if err != nil {
			return results, best, fmt.Errorf("%s level %d: %w", id, level, err)
		}
		stat.Trial = level
		if o.opts.needsHistory() || (o.opts.HistoryForAllBest && len(o.window) > 0) {
			h, err := o.bestEval.Evaluate(ctx, cfg, o.window)
			if err != nil {
				return results, best, fmt.Errorf("%s level %d: %w", id, level, err)
			}
			stat.History = h
		}

		results = append(results, stat)
		if objective.Better(stat, best, o.opts.Objective) {
			best = stat
		}
		o.logger.Debug("level_evaluated", "resource", id, "level", level,
			"score", objective.Score(stat, o.opts.Objective))
	}
	return results, best, nil
}
