// Package prices provides the exchange price history used by the optimizer.
// Snapshots are loaded fully into memory before a search starts and are
// shared read-only between trials.
package prices

import (
	"fmt"
	"sort"
	"time"

	"github.com/napolitain/solver-simco/internal/models"
)

// History is an ordered, immutable series of price snapshots
type History struct {
	snapshots []*models.PriceSnapshot
}

// NewHistory sorts snapshots by time and fills gaps: a resource missing from
// a snapshot keeps its last known price. The input is not modified.
func NewHistory(snapshots []models.PriceSnapshot) *History {
	sorted := make([]models.PriceSnapshot, len(snapshots))
	copy(sorted, snapshots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	h := &History{snapshots: make([]*models.PriceSnapshot, 0, len(sorted))}
	var prev map[models.ResourceID]float64
	for _, s := range sorted {
		filled := make(map[models.ResourceID]float64, len(s.Prices)+len(prev))
		for id, p := range prev {
			filled[id] = p
		}
		for id, p := range s.Prices {
			filled[id] = p
		}
		h.snapshots = append(h.snapshots, &models.PriceSnapshot{Timestamp: s.Timestamp, Prices: filled})
		prev = filled
	}
	return h
}

// Len returns the number of snapshots
func (h *History) Len() int {
	return len(h.snapshots)
}

// Latest returns the most recent snapshot
func (h *History) Latest() (*models.PriceSnapshot, error) {
	if len(h.snapshots) == 0 {
		return nil, models.ErrEmptyPriceHistory
	}
	return h.snapshots[len(h.snapshots)-1], nil
}

// CurrentPrice returns the latest price of a resource
func (h *History) CurrentPrice(id models.ResourceID) (float64, error) {
	latest, err := h.Latest()
	if err != nil {
		return 0, err
	}
	p, ok := latest.Price(id)
	if !ok {
		return 0, fmt.Errorf("%s: %w", id, models.ErrPriceNotFound)
	}
	return p, nil
}

// Window returns the snapshots no older than lookback before the latest one,
// keeping only the first snapshot of every step-sized bucket. A zero lookback
// returns the full history and a zero step disables thinning.
func (h *History) Window(lookback, step time.Duration) []*models.PriceSnapshot {
	if len(h.snapshots) == 0 {
		return nil
	}
	latest := h.snapshots[len(h.snapshots)-1].Timestamp
	oldest := time.Time{}
	if lookback > 0 {
		oldest = latest.Add(-lookback)
	}

	var out []*models.PriceSnapshot
	var lastBucket time.Time
	for _, s := range h.snapshots {
		if s.Timestamp.Before(oldest) {
			continue
		}
		if step > 0 {
			bucket := s.Timestamp.Truncate(step)
			if len(out) > 0 && bucket.Equal(lastBucket) {
				continue
			}
			lastBucket = bucket
		}
		out = append(out, s)
	}
	return out
}

// Snapshots returns every snapshot in time order
func (h *History) Snapshots() []*models.PriceSnapshot {
	return h.Window(0, 0)
}
