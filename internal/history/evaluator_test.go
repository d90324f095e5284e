package history

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/napolitain/solver-simco/internal/catalog"
	"github.com/napolitain/solver-simco/internal/models"
	"github.com/napolitain/solver-simco/internal/prices"
	"github.com/napolitain/solver-simco/internal/production"
)

const dataDir = "../../data"

func profits(values ...float64) []models.Profit {
	start := time.Date(2021, 12, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Profit, len(values))
	for i, v := range values {
		out[i] = models.Profit{Value: v, Timestamp: start.Add(time.Duration(i) * time.Hour)}
	}
	return out
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		avg      float64
		min, max float64
		loss     int
		lossPct  float64
	}{
		{"all profit", []float64{10, 20, 30}, 20, 10, 30, 0, 0},
		{"zero counts as loss", []float64{0, 10, -10, 20}, 5, -10, 20, 2, 50},
		{"all loss", []float64{-1, -2}, -1.5, -2, -1, 2, 100},
		{"single sample", []float64{42}, 42, 42, 42, 0, 0},
		{"one in three", []float64{-5, 5, 5}, 5.0 / 3, -5, 5, 1, 100.0 / 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Summarize(profits(tt.values...))
			if err != nil {
				t.Fatalf("Summarize failed: %v", err)
			}
			if math.Abs(h.AvgProfitPerHour-tt.avg) > 1e-9 {
				t.Errorf("avg = %v, want %v", h.AvgProfitPerHour, tt.avg)
			}
			if h.MinProfitPerHour != tt.min || h.MaxProfitPerHour != tt.max {
				t.Errorf("min/max = %v/%v, want %v/%v", h.MinProfitPerHour, h.MaxProfitPerHour, tt.min, tt.max)
			}
			if h.CountIterationsWithLoss != tt.loss || h.CountIterationsWithProfit != len(tt.values)-tt.loss {
				t.Errorf("loss/profit counts = %d/%d", h.CountIterationsWithLoss, h.CountIterationsWithProfit)
			}
			if h.LossPercentage != float64(tt.loss)/float64(len(tt.values))*100 || math.Abs(h.LossPercentage-tt.lossPct) > 1e-9 {
				t.Errorf("loss percentage = %v, want %v", h.LossPercentage, tt.lossPct)
			}
			if h.LossPercentage < 0 || h.LossPercentage > 100 {
				t.Errorf("loss percentage %v out of range", h.LossPercentage)
			}
		})
	}
}

func TestEmptyHistory(t *testing.T) {
	if _, err := Summarize(nil); !errors.Is(err, models.ErrEmptyPriceHistory) {
		t.Errorf("Summarize(nil) err = %v, want ErrEmptyPriceHistory", err)
	}
	e := NewEvaluator(stubSimulator{}, 4)
	if _, err := e.Evaluate(context.Background(), models.CompanyConfiguration{}, nil); !errors.Is(err, models.ErrEmptyPriceHistory) {
		t.Errorf("Evaluate err = %v, want ErrEmptyPriceHistory", err)
	}
}

// stubSimulator reports the snapshot's "profit" price as total profit
type stubSimulator struct{}

func (stubSimulator) Simulate(cfg models.CompanyConfiguration, p models.PriceSource) (*models.ProductionStatistic, error) {
	v, ok := p.Price("profit")
	if !ok {
		return nil, models.ErrPriceNotFound
	}
	stat := models.NewProductionStatistic(cfg)
	stat.TotalProfitPerHour = v
	return stat, nil
}

func stubSnapshots(values ...float64) []*models.PriceSnapshot {
	start := time.Date(2021, 12, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*models.PriceSnapshot, len(values))
	for i, v := range values {
		out[i] = &models.PriceSnapshot{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Prices:    map[models.ResourceID]float64{"profit": v},
		}
	}
	return out
}

func TestEvaluateKeepsSnapshotOrder(t *testing.T) {
	values := []float64{3, -1, 4, -1, 5, 9, -2, 6, 5, 3, 5}
	for _, workers := range []int{1, 3, 0} {
		h, err := NewEvaluator(stubSimulator{}, workers).Evaluate(context.Background(), models.CompanyConfiguration{}, stubSnapshots(values...))
		if err != nil {
			t.Fatalf("workers=%d: Evaluate failed: %v", workers, err)
		}
		for i, p := range h.Profits {
			if p.Value != values[i] {
				t.Errorf("workers=%d: sample %d = %v, want %v", workers, i, p.Value, values[i])
			}
		}
		if h.CountIterationsWithLoss != 3 {
			t.Errorf("workers=%d: loss count = %d, want 3", workers, h.CountIterationsWithLoss)
		}
	}
}

func TestEvaluateFailsOnBadSnapshot(t *testing.T) {
	snaps := stubSnapshots(1, 2, 3)
	snaps[1].Prices = nil
	_, err := NewEvaluator(stubSimulator{}, 2).Evaluate(context.Background(), models.CompanyConfiguration{}, snaps)
	if !errors.Is(err, models.ErrPriceNotFound) {
		t.Errorf("err = %v, want ErrPriceNotFound", err)
	}
}

func TestEvaluateFixtureHistory(t *testing.T) {
	c, err := catalog.LoadDir(dataDir)
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	f, err := os.Open(filepath.Join(dataDir, "prices.csv"))
	if err != nil {
		t.Fatalf("Failed to open prices: %v", err)
	}
	defer f.Close()
	snaps, err := prices.ReadCSV(f, prices.CSVOptions{})
	if err != nil {
		t.Fatalf("Failed to read prices: %v", err)
	}
	window := prices.NewHistory(snaps).Window(10*24*time.Hour, time.Hour)

	cfg := models.CompanyConfiguration{
		BuildingsPerResource: map[models.ResourceID]int{"apples": 4, "seeds": 2, "water": 3},
		CooOverheadReduction: 7,
		ProductionSpeed:      1.06,
		InputsFromContracts:  true,
	}
	h, err := NewEvaluator(production.NewSimulator(c), 0).Evaluate(context.Background(), cfg, window)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if h.Samples() != len(window) {
		t.Errorf("samples = %d, want %d", h.Samples(), len(window))
	}
	if h.MinProfitPerHour > h.AvgProfitPerHour || h.AvgProfitPerHour > h.MaxProfitPerHour {
		t.Errorf("avg %v outside [%v, %v]", h.AvgProfitPerHour, h.MinProfitPerHour, h.MaxProfitPerHour)
	}
}
