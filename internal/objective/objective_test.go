package objective

import (
	"testing"

	"github.com/napolitain/solver-simco/internal/models"
)

func result(profit, avg, loss float64) *models.ProductionStatistic {
	return &models.ProductionStatistic{
		TotalProfitPerHour: profit,
		History:            &models.ProfitHistory{AvgProfitPerHour: avg, LossPercentage: loss},
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		obj  models.Objective
		a, b *models.ProductionStatistic
		want int
	}{
		{"latest higher profit wins", models.MaxForLatestMarket, result(10, 0, 0), result(5, 0, 0), -1},
		{"latest ignores history", models.MaxForLatestMarket, result(5, 100, 0), result(10, 0, 100), 1},
		{"avg higher wins", models.MaxAvgOverLastXDays, result(0, 20, 50), result(100, 10, 0), -1},
		{"loss lower wins", models.MinLossPercentageOverLastXDays, result(0, 1, 10), result(0, 99, 20), -1},
		{"loss tie", models.MinLossPercentageOverLastXDays, result(0, 1, 10), result(0, 99, 10), 0},
		{"composite loss first", models.MaxAvgAndMinLoss, result(0, 1, 10), result(0, 99, 20), -1},
		{"composite avg breaks tie", models.MaxAvgAndMinLoss, result(0, 1, 10), result(0, 99, 10), 1},
		{"missing history ranks last", models.MaxAvgOverLastXDays, &models.ProductionStatistic{}, result(0, -50, 100), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b, tt.obj); got != tt.want {
				t.Errorf("Compare = %d, want %d", got, tt.want)
			}
			if got := Compare(tt.b, tt.a, tt.obj); got != -tt.want {
				t.Errorf("Compare reversed = %d, want %d", got, -tt.want)
			}
		})
	}
}

func TestBetterIsStrict(t *testing.T) {
	a := result(10, 10, 10)
	if Better(a, a, models.MaxAvgAndMinLoss) {
		t.Error("a result must not beat itself")
	}
	if !Better(a, nil, models.MinLossPercentageOverLastXDays) {
		t.Error("any result beats no result")
	}
	if Better(nil, a, models.MaxForLatestMarket) {
		t.Error("nil never wins")
	}
}

// TestRankerAgreesWithLiveAccept replays a trial sequence through Better the
// way the search does and checks that Best picks the last accepted result.
func TestRankerAgreesWithLiveAccept(t *testing.T) {
	trials := []*models.ProductionStatistic{
		result(5, 3, 40), result(7, 1, 40), result(2, 9, 20), result(9, 9, 20),
		result(1, 2, 0), result(3, 2, 0), result(4, 8, 60), result(8, 2, 0),
	}
	for _, obj := range models.AllObjectives() {
		var best *models.ProductionStatistic
		var accepted []*models.ProductionStatistic
		for _, r := range trials {
			if Better(r, best, obj) {
				best = r
				accepted = append(accepted, r)
			}
		}
		last := accepted[len(accepted)-1]
		if got := Best(trials, obj); got != last {
			t.Errorf("%s: Best over trials = %+v, want last accepted %+v", obj, got, last)
		}
		if got := Best(accepted, obj); got != last {
			t.Errorf("%s: Best over accepted = %+v, want %+v", obj, got, last)
		}

		sorted := append([]*models.ProductionStatistic(nil), accepted...)
		Sort(sorted, obj)
		if sorted[0] != last {
			t.Errorf("%s: Sort put %+v first, want %+v", obj, sorted[0], last)
		}
	}
}

func TestScore(t *testing.T) {
	r := result(12, 34, 56)
	if Score(r, models.MaxForLatestMarket) != 12 || Score(r, models.MaxAvgOverLastXDays) != 34 ||
		Score(r, models.MinLossPercentageOverLastXDays) != 56 || Score(r, models.MaxAvgAndMinLoss) != 56 {
		t.Errorf("unexpected scores for %+v", r)
	}
	if Profit(r, models.MaxForLatestMarket) != 12 || Profit(r, models.MaxAvgAndMinLoss) != 34 {
		t.Errorf("unexpected profit for %+v", r)
	}
}
