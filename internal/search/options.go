package search

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/napolitain/solver-simco/internal/config"
	"github.com/napolitain/solver-simco/internal/models"
)

// Options configures a single optimization run
type Options struct {
	Generations       int
	MaxBuildingLevel  int
	MaxBuildingPlaces int
	Seed              int64
	Objective         models.Objective

	// Resources is the candidate pool. When empty, every trial picks a
	// random set of sellable resources that are not Excluded.
	Resources []models.ResourceID
	Excluded  []models.ResourceID

	// Company carries the economy settings copied into every trial
	Company models.CompanyConfiguration

	Lookback          time.Duration
	HistoryStep       time.Duration
	HistoryForAllBest bool

	// Workers is the number of trials evaluated in parallel; <= 0 uses GOMAXPROCS
	Workers int
	Logger  *slog.Logger
}

// OptionsFromConfig maps the search settings onto run options
func OptionsFromConfig(cfg config.Search, seed int64, logger *slog.Logger) Options {
	return Options{
		Generations:       cfg.Generations,
		MaxBuildingLevel:  cfg.MaxBuildingLevel,
		MaxBuildingPlaces: cfg.MaxBuildingPlaces,
		Seed:              seed,
		Objective:         cfg.Objective,
		Resources:         cfg.Resources,
		Excluded:          cfg.Excluded,
		Company:           cfg.Company(),
		Lookback:          cfg.Lookback(),
		HistoryStep:       cfg.HistoryStep(),
		HistoryForAllBest: cfg.HistoryForAllBest,
		Workers:           cfg.Workers,
		Logger:            logger,
	}
}

func (o Options) validate() error {
	switch {
	case o.Generations <= 0:
		return fmt.Errorf("%w: generations must be positive", models.ErrInvalidConfiguration)
	case o.MaxBuildingLevel <= 0:
		return fmt.Errorf("%w: max building level must be positive", models.ErrInvalidConfiguration)
	case len(o.Resources) == 0 && o.MaxBuildingPlaces <= 0:
		return fmt.Errorf("%w: max building places must be positive", models.ErrInvalidConfiguration)
	case o.Company.MaxBuildingPlaces < 0:
		return fmt.Errorf("%w: company building places cannot be negative", models.ErrInvalidConfiguration)
	}
	return nil
}

// needsHistory reports whether trials are scored on a history window
func (o Options) needsHistory() bool {
	return o.Objective.NeedsHistory()
}
