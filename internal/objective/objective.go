// Package objective ranks simulation results. The same comparison is used by
// the search when it decides whether a trial is a new best and by the ranker
// that orders results afterwards, so both always agree.
package objective

import (
	"cmp"
	"slices"

	"github.com/napolitain/solver-simco/internal/models"
)

// Compare orders a before b when a is the better result under obj: it
// returns a negative number when a is better, positive when b is better and
// 0 on a tie. A result missing the history an objective needs ranks last.
func Compare(a, b *models.ProductionStatistic, obj models.Objective) int {
	if !obj.NeedsHistory() {
		return cmp.Compare(b.TotalProfitPerHour, a.TotalProfitPerHour)
	}

	switch {
	case a.History == nil && b.History == nil:
		return 0
	case a.History == nil:
		return 1
	case b.History == nil:
		return -1
	}

	ha, hb := a.History, b.History
	switch obj {
	case models.MaxAvgOverLastXDays:
		return cmp.Compare(hb.AvgProfitPerHour, ha.AvgProfitPerHour)
	case models.MinLossPercentageOverLastXDays:
		return cmp.Compare(ha.LossPercentage, hb.LossPercentage)
	default:
		if c := cmp.Compare(ha.LossPercentage, hb.LossPercentage); c != 0 {
			return c
		}
		return cmp.Compare(hb.AvgProfitPerHour, ha.AvgProfitPerHour)
	}
}

// Better reports whether candidate strictly beats best. Any valid candidate
// beats a nil best.
func Better(candidate, best *models.ProductionStatistic, obj models.Objective) bool {
	if candidate == nil {
		return false
	}
	if best == nil {
		return true
	}
	return Compare(candidate, best, obj) < 0
}

// Sort orders results best first. Ties keep their input order.
func Sort(results []*models.ProductionStatistic, obj models.Objective) {
	slices.SortStableFunc(results, func(a, b *models.ProductionStatistic) int {
		return Compare(a, b, obj)
	})
}

// Best returns the best result, preferring the earliest on ties, or nil for
// an empty slice.
func Best(results []*models.ProductionStatistic, obj models.Objective) *models.ProductionStatistic {
	var best *models.ProductionStatistic
	for _, r := range results {
		if Better(r, best, obj) {
			best = r
		}
	}
	return best
}

// Score is the headline number of a result under obj: profit per hour for
// the latest-market and average objectives, loss percentage otherwise.
func Score(r *models.ProductionStatistic, obj models.Objective) float64 {
	switch obj {
	case models.MaxForLatestMarket:
		return r.TotalProfitPerHour
	case models.MinLossPercentageOverLastXDays, models.MaxAvgAndMinLoss:
		if r.History == nil {
			return 100
		}
		return r.History.LossPercentage
	default:
		if r.History == nil {
			return 0
		}
		return r.History.AvgProfitPerHour
	}
}

// Profit is the profit per hour a result is judged by: the latest market
// profit, or the historical average when the objective uses history.
func Profit(r *models.ProductionStatistic, obj models.Objective) float64 {
	if obj.NeedsHistory() && r.History != nil {
		return r.History.AvgProfitPerHour
	}
	return r.TotalProfitPerHour
}
