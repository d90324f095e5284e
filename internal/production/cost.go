package production

import (
	"fmt"
	"math"

	"github.com/napolitain/solver-simco/internal/models"
)

// CostAllocator assigns every resource of a simulation its averaged sourcing
// cost: the flow-weighted mean of the exchange price for bought units and
// the labor, admin and input cost of produced units. Results are stored on
// the statistic and reused, so each resource is resolved once per run.
type CostAllocator struct {
	catalog       Catalog
	prices        models.PriceSource
	fromContracts bool
	adminOverhead float64
	speed         float64
}

// NewCostAllocator prepares cost allocation for one configuration and price set
func NewCostAllocator(cat Catalog, cfg models.CompanyConfiguration, prices models.PriceSource) *CostAllocator {
	return &CostAllocator{
		catalog:       cat,
		prices:        prices,
		fromContracts: cfg.InputsFromContracts,
		adminOverhead: cfg.AdminOverhead(),
		speed:         cfg.Speed(),
	}
}

// SourcingCost resolves the averaged sourcing cost of id, resolving its
// inputs first. Quantities on stat must already be filled in.
func (a *CostAllocator) SourcingCost(id models.ResourceID, stat *models.ProductionStatistic) (float64, error) {
	return a.resolve(id, stat, make(map[models.ResourceID]bool))
}

func (a *CostAllocator) resolve(id models.ResourceID, stat *models.ProductionStatistic, open map[models.ResourceID]bool) (float64, error) {
	st := stat.Resource(id)
	if st.SourcingCostResolved {
		return st.AveragedSourcingCost, nil
	}
	if open[id] {
		return 0, &models.CycleError{Path: []models.ResourceID{id, id}}
	}
	node, err := a.catalog.Get(id)
	if err != nil {
		return 0, err
	}
	open[id] = true
	defer delete(open, id)

	bought := st.AmountBoughtPerHour()
	produced := st.AmountProducedPerHour

	var cost float64
	if total := bought + produced; total > 0 {
		var spend float64
		if bought > 0 {
			price, err := a.buyPrice(id)
			if err != nil {
				return 0, err
			}
			spend += bought * price
		}
		if produced > 0 {
			unit := node.LaborCostPerUnit(a.speed) + node.AdminCostPerUnit(a.adminOverhead, a.speed)
			for _, in := range node.Inputs {
				inCost, err := a.resolve(in.ResourceID, stat, open)
				if err != nil {
					return 0, err
				}
				unit += inCost * in.AmountPerUnit
			}
			spend += produced * unit
		}
		cost = finite(spend / total)
	}

	st.AveragedSourcingCost = cost
	st.SourcingCostResolved = true
	return cost, nil
}

// buyPrice is the exchange price, discounted by the exchange fee when inputs come from contracts
func (a *CostAllocator) buyPrice(id models.ResourceID) (float64, error) {
	price, ok := a.prices.Price(id)
	if !ok {
		return 0, fmt.Errorf("buy %s: %w", id, models.ErrPriceNotFound)
	}
	if a.fromContracts {
		price *= 1 - models.ExchangeFee
	}
	return price, nil
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
