package models

import (
	"sort"
	"time"
)

// ResourceID identifies a resource in the catalog
type ResourceID string

// SortResourceIDs sorts ids in place and returns them
func SortResourceIDs(ids []ResourceID) []ResourceID {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// InputResource is one ingredient of a recipe
type InputResource struct {
	ResourceID    ResourceID `yaml:"resource" json:"resource"`
	AmountPerUnit float64    `yaml:"amount" json:"amount"`
}

// ResourceNode holds the static recipe and economics of one resource
type ResourceNode struct {
	ID                   ResourceID      `yaml:"id" json:"id"`
	Name                 string          `yaml:"name" json:"name"`
	ProducedPerHour      float64         `yaml:"produced_per_hour" json:"produced_per_hour"`
	TransportCostPerUnit float64         `yaml:"transport_per_unit" json:"transport_per_unit"`
	BaseLaborCost        float64         `yaml:"base_salary" json:"base_salary"`
	Inputs               []InputResource `yaml:"inputs,omitempty" json:"inputs,omitempty"`
	Sellable             bool            `yaml:"sellable" json:"sellable"`
}

// LaborCostPerUnit is the worker salary spread over one hour of output
func (r *ResourceNode) LaborCostPerUnit(productionSpeed float64) float64 {
	rate := r.ProducedPerHour * productionSpeed
	if rate <= 0 {
		return 0
	}
	return r.BaseLaborCost / rate
}

// AdminCostPerUnit is the administration overhead share of one unit
func (r *ResourceNode) AdminCostPerUnit(adminOverheadPercent, productionSpeed float64) float64 {
	return r.LaborCostPerUnit(productionSpeed) * adminOverheadPercent / 100.0
}

// PriceSource resolves the market price of a resource
type PriceSource interface {
	Price(id ResourceID) (float64, bool)
}

// PriceSnapshot is the price of every traded resource at one instant.
// Snapshots are shared read-only between trials.
type PriceSnapshot struct {
	Timestamp time.Time              `json:"timestamp"`
	Prices    map[ResourceID]float64 `json:"prices"`
}

// Price implements PriceSource
func (s *PriceSnapshot) Price(id ResourceID) (float64, bool) {
	if s == nil {
		return 0, false
	}
	p, ok := s.Prices[id]
	return p, ok
}
