// Package production simulates one hour of a company's production chain:
// how much of every resource is produced, consumed, bought and sold, what
// each unit costs to source, and what the surplus earns on the exchange.
package production

import (
	"github.com/napolitain/solver-simco/internal/models"
)

// Catalog is the read-only recipe lookup the simulator needs
type Catalog interface {
	Get(id models.ResourceID) (*models.ResourceNode, error)
	Transport() models.ResourceID
}

type visitState uint8

const (
	unvisited visitState = iota
	visiting
	visited
)

// Order returns every resource reachable from the configured buildings in
// dependency order: a resource always comes after all of its inputs. Inputs
// are only followed for resources that actually have buildings, since an
// unbuilt resource is bought rather than produced. A dependency loop yields
// a *models.CycleError.
func Order(cat Catalog, cfg models.CompanyConfiguration) ([]models.ResourceID, error) {
	state := make(map[models.ResourceID]visitState)
	var order, path []models.ResourceID

	var visit func(id models.ResourceID) error
	visit = func(id models.ResourceID) error {
		switch state[id] {
		case visited:
			return nil
		case visiting:
			return cycleFrom(path, id)
		}
		node, err := cat.Get(id)
		if err != nil {
			return err
		}

		state[id] = visiting
		path = append(path, id)
		if cfg.BuildingsPerResource[id] > 0 {
			for _, in := range node.Inputs {
				if err := visit(in.ResourceID); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		state[id] = visited
		order = append(order, id)
		return nil
	}

	for _, id := range cfg.ResourceIDs() {
		if cfg.BuildingsPerResource[id] <= 0 {
			continue
		}
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func cycleFrom(path []models.ResourceID, id models.ResourceID) error {
	start := 0
	for i, p := range path {
		if p == id {
			start = i
			break
		}
	}
	loop := make([]models.ResourceID, 0, len(path)-start+1)
	loop = append(loop, path[start:]...)
	loop = append(loop, id)
	return &models.CycleError{Path: loop}
}
