package models

import (
	"math"
	"time"
)

// ResourceStatistic is the outcome of one simulation for a single resource.
// It belongs to exactly one simulation run.
type ResourceStatistic struct {
	ResourceID            ResourceID `json:"resource_id"`
	BuildingLevel         int        `json:"building_level"`
	AmountProducedPerHour float64    `json:"amount_produced_per_hour"`
	AmountConsumedPerHour float64    `json:"amount_consumed_per_hour"`
	Surplus               float64    `json:"surplus"`
	AveragedSourcingCost  float64    `json:"averaged_sourcing_cost"`
	ExchangePrice         float64    `json:"exchange_price"`
	RevenuePerHour        float64    `json:"revenue_per_hour"`
	ExpensePerHour        float64    `json:"expense_per_hour"`
	ProfitPerHour         float64    `json:"profit_per_hour"`
	PercentageOfProfit    float64    `json:"percentage_of_profit"`

	// SourcingCostResolved marks AveragedSourcingCost as final for this run
	SourcingCostResolved bool `json:"-"`
}

// AmountBoughtPerHour is the deficit that has to be bought
func (s *ResourceStatistic) AmountBoughtPerHour() float64 {
	return math.Max(0, -s.Surplus)
}

// UnitsToSellPerHour is the surplus left after all consumers
func (s *ResourceStatistic) UnitsToSellPerHour() float64 {
	return math.Max(0, s.Surplus)
}

// TotalUnitsPerHour is every unit handled: produced plus bought
func (s *ResourceStatistic) TotalUnitsPerHour() float64 {
	return s.AmountProducedPerHour + s.AmountBoughtPerHour()
}

func (s *ResourceStatistic) AmountProducedPerDay() float64 { return s.AmountProducedPerHour * HoursPerDay }
func (s *ResourceStatistic) AmountBoughtPerDay() float64 { return s.AmountBoughtPerHour() * HoursPerDay }
func (s *ResourceStatistic) UnitsToSellPerDay() float64 { return s.UnitsToSellPerHour() * HoursPerDay }
func (s *ResourceStatistic) ProfitPerDay() float64 { return s.ProfitPerHour * HoursPerDay }

// ProductionStatistic is the whole-company outcome of one simulation
type ProductionStatistic struct {
	Configuration       CompanyConfiguration              `json:"configuration"`
	Resources           map[ResourceID]*ResourceStatistic `json:"resources"`
	Order               []ResourceID                      `json:"order"`
	TotalProfitPerHour  float64                           `json:"total_profit_per_hour"`
	TotalRevenuePerHour float64                           `json:"total_revenue_per_hour"`
	TotalExpensePerHour float64                           `json:"total_expense_per_hour"`
	PriceTimestamp      time.Time                         `json:"price_timestamp"`
	CalculationDuration time.Duration                     `json:"calculation_duration"`
	History             *ProfitHistory                    `json:"history,omitempty"`
	Trial               int                               `json:"trial"`
}

// NewProductionStatistic creates an empty statistic for a configuration
func NewProductionStatistic(cfg CompanyConfiguration) *ProductionStatistic {
	return &ProductionStatistic{
		Configuration: cfg,
		Resources:     make(map[ResourceID]*ResourceStatistic),
	}
}

// Resource returns the statistic for id, creating a zero placeholder on first use
func (p *ProductionStatistic) Resource(id ResourceID) *ResourceStatistic {
	if s, ok := p.Resources[id]; ok {
		return s
	}
	s := &ResourceStatistic{ResourceID: id}
	p.Resources[id] = s
	return s
}

func (p *ProductionStatistic) TotalProfitPerDay() float64 { return p.TotalProfitPerHour * HoursPerDay }
func (p *ProductionStatistic) TotalProfitPerWeek() float64 { return p.TotalProfitPerHour * HoursPerWeek }
func (p *ProductionStatistic) TotalProfitPerMonth() float64 { return p.TotalProfitPerHour * HoursPerMonth }

// Profit is one historical profit sample
type Profit struct {
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// ProfitHistory aggregates profit samples over a price history window
type ProfitHistory struct {
	Profits                   []Profit `json:"profits"`
	AvgProfitPerHour          float64  `json:"avg_profit_per_hour"`
	MinProfitPerHour          float64  `json:"min_profit_per_hour"`
	MaxProfitPerHour          float64  `json:"max_profit_per_hour"`
	CountIterationsWithLoss   int      `json:"count_iterations_with_loss"`
	CountIterationsWithProfit int      `json:"count_iterations_with_profit"`
	LossPercentage            float64  `json:"loss_percentage"`
}

// Samples returns the number of profit samples
func (h *ProfitHistory) Samples() int {
	return len(h.Profits)
}
