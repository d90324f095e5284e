// Package catalog holds the static recipe and economics of every resource.
// A Catalog is read-only after construction and safe for concurrent use.
package catalog

import (
	"fmt"

	"github.com/napolitain/solver-simco/internal/models"
)

// DefaultTransportID is the resource whose price is paid per transport unit
const DefaultTransportID models.ResourceID = "transport"

// Catalog resolves resource ids to their ResourceNode
type Catalog struct {
	TransportID models.ResourceID

	nodes    map[models.ResourceID]*models.ResourceNode
	ids      []models.ResourceID
	sellable []models.ResourceID
}

// New builds a catalog and checks that every input refers to a known resource
func New(nodes []*models.ResourceNode, transportID models.ResourceID) (*Catalog, error) {
	if transportID == "" {
		transportID = DefaultTransportID
	}
	c := &Catalog{
		TransportID: transportID,
		nodes:       make(map[models.ResourceID]*models.ResourceNode, len(nodes)),
	}

	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.ID == "" {
			return nil, fmt.Errorf("resource %q has no id", n.Name)
		}
		if _, dup := c.nodes[n.ID]; dup {
			return nil, fmt.Errorf("duplicate resource %s", n.ID)
		}
		if n.ProducedPerHour < 0 || n.BaseLaborCost < 0 || n.TransportCostPerUnit < 0 {
			return nil, fmt.Errorf("resource %s has negative economics", n.ID)
		}
		c.nodes[n.ID] = n
		c.ids = append(c.ids, n.ID)
		if n.Sellable {
			c.sellable = append(c.sellable, n.ID)
		}
	}

	for _, id := range c.ids {
		for _, in := range c.nodes[id].Inputs {
			if _, ok := c.nodes[in.ResourceID]; !ok {
				return nil, fmt.Errorf("%s input %s: %w", id, in.ResourceID, models.ErrResourceNotFound)
			}
			if in.AmountPerUnit < 0 {
				return nil, fmt.Errorf("%s input %s has negative amount", id, in.ResourceID)
			}
		}
	}

	models.SortResourceIDs(c.ids)
	models.SortResourceIDs(c.sellable)
	return c, nil
}

// Get returns the node for id or ErrResourceNotFound
func (c *Catalog) Get(id models.ResourceID) (*models.ResourceNode, error) {
	if n, ok := c.nodes[id]; ok {
		return n, nil
	}
	return nil, fmt.Errorf("%s: %w", id, models.ErrResourceNotFound)
}

// Transport returns the id of the transport resource
func (c *Catalog) Transport() models.ResourceID {
	return c.TransportID
}

// Len returns the number of resources
func (c *Catalog) Len() int {
	return len(c.ids)
}

// IDs returns all resource ids in sorted order
func (c *Catalog) IDs() []models.ResourceID {
	out := make([]models.ResourceID, len(c.ids))
	copy(out, c.ids)
	return out
}

// Nodes returns all nodes in id order
func (c *Catalog) Nodes() []*models.ResourceNode {
	out := make([]*models.ResourceNode, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.nodes[id])
	}
	return out
}

// Sellable returns the sorted sellable ids minus the excluded ones
func (c *Catalog) Sellable(excluded ...models.ResourceID) []models.ResourceID {
	skip := make(map[models.ResourceID]bool, len(excluded))
	for _, id := range excluded {
		skip[id] = true
	}
	out := make([]models.ResourceID, 0, len(c.sellable))
	for _, id := range c.sellable {
		if !skip[id] {
			out = append(out, id)
		}
	}
	return out
}
