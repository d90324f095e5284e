// Package config holds the search settings, read from YAML over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/napolitain/solver-simco/internal/models"
)

// Search configures one optimization command
type Search struct {
	Generations       int                 `yaml:"generations"`
	MaxBuildingLevel  int                 `yaml:"max_building_level"`
	MaxBuildingPlaces int                 `yaml:"max_building_places"`
	Seed              *int64              `yaml:"seed,omitempty"`
	Objective         models.Objective    `yaml:"objective"`
	Contracts         bool                `yaml:"contracts"`
	Restarts          int                 `yaml:"restarts"`
	ConcurrentRuns    int                 `yaml:"concurrent_runs"`
	Workers           int                 `yaml:"workers"`
	LookbackDays      int                 `yaml:"lookback_days"`
	HistoryStepHours  int                 `yaml:"history_step_hours"`
	CooReduction      float64             `yaml:"coo_overhead_reduction"`
	ProductionSpeed   float64             `yaml:"production_speed"`
	Resources         []models.ResourceID `yaml:"resources,omitempty"`
	Excluded          []models.ResourceID `yaml:"excluded,omitempty"`
	HistoryForAllBest bool                `yaml:"history_for_all_best"`
}

// Default returns the settings used when nothing is configured
func Default() Search {
	return Search{
		Generations:       1000,
		MaxBuildingLevel:  30,
		MaxBuildingPlaces: 12,
		Objective:         models.MaxForLatestMarket,
		Contracts:         true,
		Restarts:          1,
		ConcurrentRuns:    1,
		LookbackDays:      10,
		HistoryStepHours:  1,
		CooReduction:      7,
		ProductionSpeed:   1.06,
	}
}

// Load reads a YAML file over the defaults. A missing file is not an error.
func Load(path string) (Search, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the search cannot run with
func (s Search) Validate() error {
	switch {
	case s.Generations <= 0:
		return fmt.Errorf("%w: generations must be positive", models.ErrInvalidConfiguration)
	case s.MaxBuildingLevel <= 0:
		return fmt.Errorf("%w: max building level must be positive", models.ErrInvalidConfiguration)
	case s.MaxBuildingPlaces <= 0:
		return fmt.Errorf("%w: max building places must be positive", models.ErrInvalidConfiguration)
	case s.Restarts < 0 || s.ConcurrentRuns < 0 || s.Workers < 0:
		return fmt.Errorf("%w: restarts, concurrent runs and workers cannot be negative", models.ErrInvalidConfiguration)
	case s.LookbackDays < 0 || s.HistoryStepHours < 0:
		return fmt.Errorf("%w: history window cannot be negative", models.ErrInvalidConfiguration)
	case s.ProductionSpeed < 0:
		return fmt.Errorf("%w: production speed cannot be negative", models.ErrInvalidConfiguration)
	}
	if _, ok := objectiveKnown[s.Objective]; !ok {
		return fmt.Errorf("%w: unknown objective %d", models.ErrInvalidConfiguration, int(s.Objective))
	}
	return nil
}

var objectiveKnown = func() map[models.Objective]struct{} {
	m := make(map[models.Objective]struct{})
	for _, o := range models.AllObjectives() {
		m[o] = struct{}{}
	}
	return m
}()

// Lookback is the history window length
func (s Search) Lookback() time.Duration {
	return time.Duration(s.LookbackDays) * 24 * time.Hour
}

// HistoryStep is the spacing between sampled snapshots
func (s Search) HistoryStep() time.Duration {
	return time.Duration(s.HistoryStepHours) * time.Hour
}

// SeedOrNow returns the configured seed or one derived from the clock
func (s Search) SeedOrNow() int64 {
	if s.Seed != nil {
		return *s.Seed
	}
	return time.Now().UnixNano()
}

// Company builds the base company settings shared by every trial
func (s Search) Company() models.CompanyConfiguration {
	return models.CompanyConfiguration{
		CooOverheadReduction: s.CooReduction,
		ProductionSpeed:      s.ProductionSpeed,
		InputsFromContracts:  s.Contracts,
		MaxBuildingPlaces:    s.MaxBuildingPlaces,
	}
}
