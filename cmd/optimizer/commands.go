package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/napolitain/solver-simco/internal/catalog"
	"github.com/napolitain/solver-simco/internal/history"
	"github.com/napolitain/solver-simco/internal/models"
	"github.com/napolitain/solver-simco/internal/prices"
	"github.com/napolitain/solver-simco/internal/production"
	"github.com/napolitain/solver-simco/internal/report"
	"github.com/napolitain/solver-simco/internal/search"
)

func newSimulateCmd() *cobra.Command {
	var (
		flags       searchFlags
		buildings   map[string]int
		withHistory bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate one building layout at the latest prices",
		Example: `  optimizer simulate --buildings apples=4,seeds=2,water=3
  optimizer simulate --buildings processors=10,silicon=8 --history`,
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
			hist, err := loadHistory(ctx)
			if err != nil {
				return err
			}
			latest, err := hist.Latest()
			if err != nil {
				return err
			}

			company := cfg.Company()
			company.BuildingsPerResource = make(map[models.ResourceID]int, len(buildings))
			for id, level := range buildings {
				company.BuildingsPerResource[models.ResourceID(id)] = level
			}
			if err := company.Validate(cfg.MaxBuildingLevel); err != nil {
				return err
			}

			sim := production.NewSimulator(cat)
			stat, err := sim.Simulate(company, latest)
			if err != nil {
				return err
			}
			if withHistory || cfg.Objective.NeedsHistory() {
				window := hist.Window(cfg.Lookback(), cfg.HistoryStep())
				h, err := history.NewEvaluator(sim, cfg.Workers).Evaluate(ctx, company, window)
				if err != nil {
					return err
				}
				stat.History = h
			}
			return report.NewPrinter(os.Stdout).Statistic("Simulated configuration", stat)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringToIntVarP(&buildings, "buildings", "b", nil, "Building level per resource, e.g. apples=4,seeds=2")
	cmd.Flags().BoolVar(&withHistory, "history", false, "Also evaluate the layout over the price history")
	_ = cmd.MarkFlagRequired("buildings")
	return cmd
}

func newSweepCmd() *cobra.Command {
	var (
		flags    searchFlags
		target   string
		maxLevel int
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Evaluate every building level of a single resource",
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
			hist, err := loadHistory(ctx)
			if err != nil {
				return err
			}
			if maxLevel <= 0 {
				maxLevel = cfg.MaxBuildingLevel
			}

			opt, err := search.New(cat, hist, search.OptionsFromConfig(cfg, cfg.SeedOrNow(), logger))
			if err != nil {
				return err
			}
			id := models.ResourceID(target)
			results, best, err := opt.SweepLevels(ctx, id, maxLevel)
			if err != nil {
				return err
			}
			printer := report.NewPrinter(os.Stdout)
			if err := printer.Sweep(id, results, best, cfg.Objective); err != nil {
				return err
			}
			return printer.Statistic(fmt.Sprintf("Best level for %s", id), best)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&target, "target", "t", "", "Resource to sweep")
	cmd.Flags().IntVar(&maxLevel, "max-level", 0, "Highest level to evaluate (default: max building level)")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func newPricesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Manage the exchange price database",
	}

	var (
		csvPath  string
		skipRows int
	)
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import an exchange tracker CSV export into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return fmt.Errorf("--db is required")
			}
			if csvPath == "" {
				csvPath = filepath.Join(dataDir, "prices.csv")
			}
			f, err := os.Open(csvPath)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", filepath.Base(csvPath), err)
			}
			defer f.Close()
			snaps, err := prices.ReadCSV(f, prices.CSVOptions{SkipRows: skipRows})
			if err != nil {
				return err
			}

			store, err := prices.OpenStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			n, err := store.SaveSnapshots(cmd.Context(), snaps)
			if err != nil {
				return err
			}
			logger.Info("prices_imported", "snapshots", len(snaps), "new_prices", n)
			color.Green("Imported %d snapshots (%d new prices) into %s", len(snaps), n, dbPath)
			return nil
		},
	}
	importCmd.Flags().StringVar(&csvPath, "csv", "", "CSV export (default <data>/prices.csv)")
	importCmd.Flags().IntVar(&skipRows, "skip-rows", 0, "Preamble rows before the header")

	cmd.AddCommand(importCmd)
	return cmd
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the resource catalog",
	}

	var (
		baseURL   string
		maxIndex  int
		indices   []int
		every     time.Duration
		out       string
		transport string
	)
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download resource recipes from the encyclopedia and write catalog YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(indices) == 0 {
				for i := 1; i <= maxIndex; i++ {
					indices = append(indices, i)
				}
			}
			fetcher := catalog.NewFetcher(baseURL, every)
			fetcher.Logger = logger

			ctx, cancel := signalContext()
			defer cancel()
			c, err := fetcher.FetchAll(ctx, indices, models.ResourceID(transport))
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(dataDir, catalog.FileName)
			}
			if err := catalog.Save(out, c); err != nil {
				return err
			}
			color.Green("Wrote %d resources to %s", c.Len(), out)
			return nil
		},
	}
	fl := fetchCmd.Flags()
	fl.StringVar(&baseURL, "base-url", catalog.DefaultBaseURL, "Encyclopedia host")
	fl.IntVar(&maxIndex, "max", 113, "Fetch resource indices 1..max")
	fl.IntSliceVar(&indices, "indices", nil, "Fetch only these resource indices")
	fl.DurationVar(&every, "every", 500*time.Millisecond, "Minimum time between requests")
	fl.StringVar(&out, "out", "", "Output file (default <data>/catalog.yaml)")
	fl.StringVar(&transport, "transport", string(catalog.DefaultTransportID), "Id of the transport resource")

	cmd.AddCommand(fetchCmd)
	return cmd
}

func newRunsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List optimization runs saved in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return fmt.Errorf("--db is required")
			}
			store, err := prices.OpenStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			return printRuns(os.Stdout, runs)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}

func printRuns(w io.Writer, runs []prices.RunRecord) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"ID", "Created", "Objective", "Seed", "Profit/h"}),
	)
	for _, r := range runs {
		row := []string{
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.Objective,
			fmt.Sprintf("%d", r.Seed),
			fmt.Sprintf("%.2f", r.ProfitPerHour),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
