package production

import (
	"math"
	"testing"

	"github.com/napolitain/solver-simco/internal/catalog"
	"github.com/napolitain/solver-simco/internal/models"
)

// FuzzSimulate throws random building levels and economy parameters at the
// fixture catalog and checks that nothing non-finite leaks into the result
func FuzzSimulate(f *testing.F) {
	f.Add(uint8(1), uint8(0), uint8(0), uint8(7), uint8(106), true)
	f.Add(uint8(30), uint8(30), uint8(30), uint8(0), uint8(100), false)
	f.Add(uint8(0), uint8(0), uint8(1), uint8(255), uint8(1), true)
	f.Add(uint8(255), uint8(3), uint8(0), uint8(0), uint8(0), false)

	c, err := catalog.LoadDir(dataDir)
	if err != nil {
		f.Fatalf("Failed to load catalog: %v", err)
	}
	prices := fixturePrices(c)
	sim := NewSimulator(c)

	f.Fuzz(func(t *testing.T, processors, plastic, apples, coo, speed uint8, contracts bool) {
		cfg := models.CompanyConfiguration{
			BuildingsPerResource: map[models.ResourceID]int{
				"processors": int(processors),
				"plastic":    int(plastic),
				"apples":     int(apples),
			},
			CooOverheadReduction: float64(coo),
			ProductionSpeed:      float64(speed) / 100,
			InputsFromContracts:  contracts,
		}
		stat, err := sim.Simulate(cfg, prices)
		if err != nil {
			t.Fatalf("Simulate failed: %v", err)
		}

		values := []float64{stat.TotalProfitPerHour, stat.TotalRevenuePerHour, stat.TotalExpensePerHour}
		for _, st := range stat.Resources {
			values = append(values, st.AveragedSourcingCost, st.RevenuePerHour, st.ExpensePerHour,
				st.ProfitPerHour, st.PercentageOfProfit, st.Surplus)
		}
		for _, v := range values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("non-finite value in result for %v", cfg.BuildingsPerResource)
			}
		}
	})
}

func BenchmarkSimulate(b *testing.B) {
	c, err := catalog.LoadDir(dataDir)
	if err != nil {
		b.Fatalf("Failed to load catalog: %v", err)
	}
	prices := fixturePrices(c)
	sim := NewSimulator(c)
	cfg := models.CompanyConfiguration{
		BuildingsPerResource: map[models.ResourceID]int{
			"processors": 12, "silicon": 8, "power": 10, "plastic": 6, "crude-oil": 9, "transport": 2,
		},
		CooOverheadReduction: 7,
		ProductionSpeed:      1.06,
		InputsFromContracts:  true,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := sim.Simulate(cfg, prices); err != nil {
			b.Fatal(err)
		}
	}
}
