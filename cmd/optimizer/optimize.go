package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/napolitain/solver-simco/internal/config"
	"github.com/napolitain/solver-simco/internal/models"
	"github.com/napolitain/solver-simco/internal/objective"
	"github.com/napolitain/solver-simco/internal/prices"
	"github.com/napolitain/solver-simco/internal/report"
	"github.com/napolitain/solver-simco/internal/search"
)

type searchFlags struct {
	configFile     string
	generations    int
	maxLevel       int
	maxPlaces      int
	seed           int64
	restarts       int
	concurrent     int
	workers        int
	objectiveName  string
	contracts      bool
	lookbackDays   int
	stepHours      int
	cooReduction   float64
	speed          float64
	resources      []string
	excluded       []string
	historyForBest bool
}

func (f *searchFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.configFile, "config", "c", "", "Search settings YAML file")
	fl.IntVarP(&f.generations, "generations", "g", 0, "Number of random trials per run")
	fl.IntVarP(&f.maxLevel, "maxbuildinglevel", "l", 0, "Highest building level per resource")
	fl.IntVarP(&f.maxPlaces, "maxbuildingplaces", "p", 0, "Building places available")
	fl.Int64VarP(&f.seed, "seed", "s", 0, "Random seed (default: clock)")
	fl.IntVar(&f.restarts, "restarts", 0, "Independent runs with consecutive seeds")
	fl.IntVar(&f.concurrent, "concurrent", 0, "Runs executed at the same time")
	fl.IntVarP(&f.workers, "workers", "w", 0, "Parallel trials per run (default GOMAXPROCS)")
	fl.StringVarP(&f.objectiveName, "objective", "o", "", "max-latest, max-avg, min-loss or max-avg-min-loss")
	fl.BoolVar(&f.contracts, "contracts", true, "Buy inputs through contracts")
	fl.IntVar(&f.lookbackDays, "lookback", 0, "History window in days")
	fl.IntVar(&f.stepHours, "step", 0, "Hours between sampled snapshots")
	fl.Float64Var(&f.cooReduction, "coo", 0, "Admin overhead reduction from the COO")
	fl.Float64Var(&f.speed, "speed", 0, "Production speed multiplier")
	fl.StringSliceVarP(&f.resources, "resources", "r", nil, "Resource pool (default: random sellable resources)")
	fl.StringSliceVar(&f.excluded, "exclude", nil, "Resources never picked at random")
	fl.BoolVar(&f.historyForBest, "history-all", false, "Attach price history to every accepted best")
}

// settings loads the config file and applies the flags that were set
func (f *searchFlags) settings(cmd *cobra.Command) (config.Search, error) {
	cfg, err := config.Load(f.configFile)
	if err != nil {
		return cfg, err
	}
	changed := cmd.Flags().Changed
	if changed("generations") {
		cfg.Generations = f.generations
	}
	if changed("maxbuildinglevel") {
		cfg.MaxBuildingLevel = f.maxLevel
	}
	if changed("maxbuildingplaces") {
		cfg.MaxBuildingPlaces = f.maxPlaces
	}
	if changed("seed") {
		cfg.Seed = &f.seed
	}
	if changed("restarts") {
		cfg.Restarts = f.restarts
	}
	if changed("concurrent") {
		cfg.ConcurrentRuns = f.concurrent
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("objective") {
		obj, err := models.ParseObjective(f.objectiveName)
		if err != nil {
			return cfg, err
		}
		cfg.Objective = obj
	}
	if changed("contracts") {
		cfg.Contracts = f.contracts
	}
	if changed("lookback") {
		cfg.LookbackDays = f.lookbackDays
	}
	if changed("step") {
		cfg.HistoryStepHours = f.stepHours
	}
	if changed("coo") {
		cfg.CooReduction = f.cooReduction
	}
	if changed("speed") {
		cfg.ProductionSpeed = f.speed
	}
	if changed("resources") {
		cfg.Resources = toIDs(f.resources)
	}
	if changed("exclude") {
		cfg.Excluded = toIDs(f.excluded)
	}
	if changed("history-all") {
		cfg.HistoryForAllBest = f.historyForBest
	}
	return cfg, cfg.Validate()
}

func toIDs(values []string) []models.ResourceID {
	ids := make([]models.ResourceID, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			ids = append(ids, models.ResourceID(v))
		}
	}
	return ids
}

func newOptimizeCmd() *cobra.Command {
	var (
		flags     searchFlags
		outputDir string
		quiet     bool
	)
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Search for the most profitable building layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.settings(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			cat, err := loadCatalog()
			if err != nil {
				return err
			}
			history, err := loadHistory(ctx)
			if err != nil {
				return err
			}

			opts := search.OptionsFromConfig(cfg, cfg.SeedOrNow(), logger)
			runs, err := search.RunRestarts(ctx, cat, history, opts, cfg.Restarts, cfg.ConcurrentRuns)
			if err != nil && ctx.Err() == nil {
				return err
			}
			if err != nil {
				color.Yellow("Interrupted, reporting what was found so far")
			}

			best := search.BestOf(runs, cfg.Objective)
			if best == nil {
				return fmt.Errorf("no trial produced a result")
			}

			printer := report.NewPrinter(os.Stdout)
			if !quiet {
				if len(runs) > 1 {
					if err := printer.Restarts(runs, cfg.Objective); err != nil {
						return err
					}
				}
				label := fmt.Sprintf("Best configuration (%s, seed %d, trial %d)", cfg.Objective, best.Configuration.Seed, best.Trial)
				if err := printer.Statistic(label, best); err != nil {
					return err
				}
			} else {
				fmt.Printf("%.2f\n", objective.Profit(best, cfg.Objective))
			}

			file := report.NewFile(runs, cfg.Objective, time.Now())
			if outputDir != "" {
				path, err := file.Write(outputDir)
				if err != nil {
					return err
				}
				logger.Info("report_written", "path", path)
			}
			if dbPath != "" {
				if err := saveRun(cmd, file, best, cfg.Objective); err != nil {
					return err
				}
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&outputDir, "output", "", "Directory for the JSON report")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print only the profit of the best result")
	return cmd
}

func saveRun(cmd *cobra.Command, file *report.File, best *models.ProductionStatistic, obj models.Objective) error {
	store, err := prices.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to encode run: %w", err)
	}
	id, err := store.SaveRun(cmd.Context(), prices.RunRecord{
		ID:            file.ID,
		CreatedAt:     file.CreatedAt,
		Objective:     obj.String(),
		Seed:          best.Configuration.Seed,
		ProfitPerHour: objective.Profit(best, obj),
		Result:        string(data),
	})
	if err != nil {
		return err
	}
	logger.Info("run_saved", "id", id)
	return nil
}
