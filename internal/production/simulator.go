package production

import (
	"fmt"
	"time"

	"github.com/napolitain/solver-simco/internal/models"
)

// Simulator evaluates company configurations against a catalog.
// It holds no per-run state and is safe for concurrent use.
type Simulator struct {
	catalog Catalog
}

// NewSimulator creates a simulator over cat
func NewSimulator(cat Catalog) *Simulator {
	return &Simulator{catalog: cat}
}

// Simulate computes one hour of production for cfg at the given prices.
// The configuration is not modified. A missing price that the result
// depends on is reported as models.ErrPriceNotFound.
func (s *Simulator) Simulate(cfg models.CompanyConfiguration, prices models.PriceSource) (*models.ProductionStatistic, error) {
	start := time.Now()

	order, err := Order(s.catalog, cfg)
	if err != nil {
		return nil, err
	}

	stat := models.NewProductionStatistic(cfg)
	stat.Order = order
	if snap, ok := prices.(*models.PriceSnapshot); ok && snap != nil {
		stat.PriceTimestamp = snap.Timestamp
	}

	if err := s.fillQuantities(stat); err != nil {
		return nil, err
	}

	alloc := NewCostAllocator(s.catalog, cfg, prices)
	for _, id := range order {
		if _, err := alloc.SourcingCost(id, stat); err != nil {
			return nil, err
		}
	}

	if err := s.fillMoney(stat, prices); err != nil {
		return nil, err
	}

	stat.CalculationDuration = time.Since(start)
	return stat, nil
}

// fillQuantities sets produced, consumed and surplus amounts. Production speed
// only lowers labor cost; output is the base rate times the building level.
func (s *Simulator) fillQuantities(stat *models.ProductionStatistic) error {
	cfg := stat.Configuration
	for _, id := range stat.Order {
		st := stat.Resource(id)
		st.BuildingLevel = cfg.BuildingsPerResource[id]
		if st.BuildingLevel <= 0 {
			continue
		}
		node, err := s.catalog.Get(id)
		if err != nil {
			return err
		}
		st.AmountProducedPerHour = node.ProducedPerHour * float64(st.BuildingLevel)
		for _, in := range node.Inputs {
			stat.Resource(in.ResourceID).AmountConsumedPerHour += in.AmountPerUnit * st.AmountProducedPerHour
		}
	}
	for _, id := range stat.Order {
		st := stat.Resource(id)
		st.Surplus = st.AmountProducedPerHour - st.AmountConsumedPerHour
	}
	return nil
}

// fillMoney prices the surplus of every resource and sums the totals.
// Sellable surplus is sold on the exchange and pays transport; surplus that
// cannot be sold is written off at its sourcing cost.
func (s *Simulator) fillMoney(stat *models.ProductionStatistic, prices models.PriceSource) error {
	var transportPrice float64
	transportResolved := false

	for _, id := range stat.Order {
		st := stat.Resource(id)
		node, err := s.catalog.Get(id)
		if err != nil {
			return err
		}
		price, hasPrice := prices.Price(id)
		if hasPrice {
			st.ExchangePrice = price
		}

		sold := st.UnitsToSellPerHour()
		switch {
		case sold <= 0:
		case node.Sellable:
			if !hasPrice {
				return fmt.Errorf("sell %s: %w", id, models.ErrPriceNotFound)
			}
			var transport float64
			if node.TransportCostPerUnit > 0 {
				if !transportResolved {
					tid := s.catalog.Transport()
					p, ok := prices.Price(tid)
					if !ok {
						return fmt.Errorf("transport %s for %s: %w", tid, id, models.ErrPriceNotFound)
					}
					transportPrice, transportResolved = p, true
				}
				transport = node.TransportCostPerUnit * transportPrice
			}
			st.RevenuePerHour = finite(sold * price * (1 - models.ExchangeFee))
			st.ExpensePerHour = finite(sold * (st.AveragedSourcingCost + transport))
		default:
			st.ExpensePerHour = finite(sold * st.AveragedSourcingCost)
		}
		st.ProfitPerHour = st.RevenuePerHour - st.ExpensePerHour

		stat.TotalRevenuePerHour += st.RevenuePerHour
		stat.TotalExpensePerHour += st.ExpensePerHour
	}
	stat.TotalProfitPerHour = stat.TotalRevenuePerHour - stat.TotalExpensePerHour

	for _, id := range stat.Order {
		st := stat.Resource(id)
		if stat.TotalProfitPerHour != 0 {
			st.PercentageOfProfit = finite(st.ProfitPerHour / stat.TotalProfitPerHour * 100)
		}
	}
	return nil
}
