package models

import (
	"fmt"
	"math"
)

// CompanyConfiguration is one candidate layout of production buildings.
// It is treated as immutable once handed to the simulator.
type CompanyConfiguration struct {
	BuildingsPerResource map[ResourceID]int `json:"buildings_per_resource"`
	CooOverheadReduction float64            `json:"coo_overhead_reduction"`
	ProductionSpeed      float64            `json:"production_speed"`
	InputsFromContracts  bool               `json:"inputs_from_contracts"`
	MaxBuildingPlaces    int                `json:"max_building_places"`
	Seed                 int64              `json:"seed"`
}

// TotalBuildings sums the building levels of all resources
func (c *CompanyConfiguration) TotalBuildings() int {
	total := 0
	for _, level := range c.BuildingsPerResource {
		total += level
	}
	return total
}

// UsedPlaces counts resources with at least one building
func (c *CompanyConfiguration) UsedPlaces() int {
	n := 0
	for _, level := range c.BuildingsPerResource {
		if level > 0 {
			n++
		}
	}
	return n
}

// AdminOverhead returns the admin overhead percentage, never below zero
func (c *CompanyConfiguration) AdminOverhead() float64 {
	overhead := float64(c.TotalBuildings())*100*AdminOverheadFactor - c.CooOverheadReduction
	return math.Max(0, overhead)
}

// Speed returns the production speed, defaulting to 1
func (c *CompanyConfiguration) Speed() float64 {
	if c.ProductionSpeed <= 0 {
		return 1
	}
	return c.ProductionSpeed
}

// ResourceIDs returns the configured resources in sorted order
func (c *CompanyConfiguration) ResourceIDs() []ResourceID {
	ids := make([]ResourceID, 0, len(c.BuildingsPerResource))
	for id := range c.BuildingsPerResource {
		ids = append(ids, id)
	}
	return SortResourceIDs(ids)
}

// Validate checks building counts against the given caps. A cap of 0 disables the check.
func (c *CompanyConfiguration) Validate(levelCap int) error {
	for _, id := range c.ResourceIDs() {
		level := c.BuildingsPerResource[id]
		if level < 0 {
			return fmt.Errorf("%w: %s has negative building level %d", ErrInvalidConfiguration, id, level)
		}
		if levelCap > 0 && level > levelCap {
			return fmt.Errorf("%w: %s level %d exceeds cap %d", ErrInvalidConfiguration, id, level, levelCap)
		}
	}
	if c.TotalBuildings() == 0 {
		return fmt.Errorf("%w: no buildings", ErrInvalidConfiguration)
	}
	if c.MaxBuildingPlaces > 0 && c.UsedPlaces() > c.MaxBuildingPlaces {
		return fmt.Errorf("%w: %d building places used, only %d available",
			ErrInvalidConfiguration, c.UsedPlaces(), c.MaxBuildingPlaces)
	}
	return nil
}
