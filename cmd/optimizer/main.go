package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/napolitain/solver-simco/internal/catalog"
	"github.com/napolitain/solver-simco/internal/logging"
	"github.com/napolitain/solver-simco/internal/prices"
)

var (
	dataDir     string
	catalogPath string
	pricesPath  string
	dbPath      string
	verbose     bool
	logFile     string

	logger   = logging.Discard()
	closeLog = func() error { return nil }
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "optimizer",
		Short: "Sim Companies production profit optimizer",
		Long: `Simulates production chains against exchange prices and searches
for the building layout with the best profit under a chosen objective.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, closeLog, err = logging.New(logging.Options{File: logFile, Verbose: verbose})
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeLog()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&dataDir, "data", "d", "data", "Path to data directory")
	pf.StringVar(&catalogPath, "catalog", "", "Catalog YAML file (default <data>/catalog.yaml)")
	pf.StringVar(&pricesPath, "prices", "", "Exchange tracker CSV file (default <data>/prices.csv)")
	pf.StringVar(&dbPath, "db", "", "SQLite price database; used instead of the CSV when set")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	pf.StringVar(&logFile, "log-file", "", "Also write logs to this file")

	rootCmd.AddCommand(newOptimizeCmd(), newSimulateCmd(), newSweepCmd(), newPricesCmd(), newCatalogCmd(), newRunsCmd())

	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// signalContext is cancelled on Ctrl-C so a search stops between trials
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func loadCatalog() (*catalog.Catalog, error) {
	path := catalogPath
	if path == "" {
		path = filepath.Join(dataDir, catalog.FileName)
	}
	c, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog_loaded", "path", path, "resources", c.Len())
	return c, nil
}

// loadHistory reads price snapshots from the database when --db is set,
// otherwise from the CSV export
func loadHistory(ctx context.Context) (*prices.History, error) {
	if dbPath != "" {
		store, err := prices.OpenStore(dbPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		h, err := store.LoadHistory(ctx, time.Time{})
		if err != nil {
			return nil, err
		}
		logger.Info("prices_loaded", "db", dbPath, "snapshots", h.Len())
		return h, nil
	}

	path := pricesPath
	if path == "" {
		path = filepath.Join(dataDir, "prices.csv")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prices: %w", err)
	}
	defer f.Close()
	snaps, err := prices.ReadCSV(f, prices.CSVOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	h := prices.NewHistory(snaps)
	logger.Info("prices_loaded", "path", path, "snapshots", h.Len())
	return h, nil
}
