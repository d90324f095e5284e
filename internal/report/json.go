package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/napolitain/solver-simco/internal/models"
	"github.com/napolitain/solver-simco/internal/objective"
	"github.com/napolitain/solver-simco/internal/search"
)

// RunSummary describes one restart in a report file
type RunSummary struct {
	Seed      int64         `json:"seed"`
	Trials    int           `json:"trials"`
	Accepted  int           `json:"accepted"`
	Discarded int           `json:"discarded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration_ns"`
}

// File is the JSON document written after an optimization
type File struct {
	ID        string                        `json:"id"`
	CreatedAt time.Time                     `json:"created_at"`
	Objective models.Objective              `json:"objective"`
	Runs      []RunSummary                  `json:"runs"`
	Results   []*models.ProductionStatistic `json:"results"`
}

// NewFile collects the best result of every run, ranked best first
func NewFile(runs []*search.Result, obj models.Objective, now time.Time) *File {
	f := &File{
		ID:        uuid.NewString(),
		CreatedAt: now.UTC(),
		Objective: obj,
		Results:   search.Bests(runs),
	}
	objective.Sort(f.Results, obj)
	for _, r := range runs {
		if r == nil {
			continue
		}
		f.Runs = append(f.Runs, RunSummary{
			Seed:      r.Seed,
			Trials:    r.Trials,
			Accepted:  len(r.Accepted),
			Discarded: r.Discarded,
			Failed:    r.Failed,
			Duration:  r.Duration,
		})
	}
	return f
}

// Best returns the top ranked result or nil
func (f *File) Best() *models.ProductionStatistic {
	if len(f.Results) == 0 {
		return nil
	}
	return f.Results[0]
}

// Name is <unix>_<objective>_<profit>.json, profit being the rounded hourly
// profit the best result is judged by
func (f *File) Name() string {
	profit := 0.0
	if best := f.Best(); best != nil {
		profit = objective.Profit(best, f.Objective)
	}
	return fmt.Sprintf("%d_%s_%d.json", f.CreatedAt.Unix(), f.Objective, int64(math.Round(profit)))
}

// Write stores the report in dir and returns its path
func (f *File) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report dir: %w", err)
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}
	path := filepath.Join(dir, f.Name())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return path, nil
}

// ReadFile loads a report written by Write
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return &f, nil
}
