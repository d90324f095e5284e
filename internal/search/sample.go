package search

import (
	"math/rand/v2"
	"slices"

	"github.com/napolitain/solver-simco/internal/models"
)

// trialRand returns the generator for one trial. Every trial gets its own
// stream derived from the run seed and the trial index, so the sampled
// configurations do not depend on which worker runs the trial.
func trialRand(seed int64, trial int) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(trial)))
}

// sample draws one company configuration
func (o *Optimizer) sample(rng *rand.Rand) models.CompanyConfiguration {
	cfg := o.opts.Company
	cfg.Seed = o.opts.Seed
	if cfg.MaxBuildingPlaces == 0 {
		cfg.MaxBuildingPlaces = o.opts.MaxBuildingPlaces
	}
	levelCap := o.opts.MaxBuildingLevel

	if len(o.opts.Resources) > 0 {
		// every pool resource gets a level, so the place cap does not apply
		cfg.MaxBuildingPlaces = 0
		cfg.BuildingsPerResource = make(map[models.ResourceID]int, len(o.opts.Resources))
		for _, id := range o.opts.Resources {
			cfg.BuildingsPerResource[id] = rng.IntN(levelCap + 1)
		}
		return cfg
	}

	places := 1 + rng.IntN(cfg.MaxBuildingPlaces)
	picked := pickDistinct(rng, o.candidates, places)
	cfg.BuildingsPerResource = make(map[models.ResourceID]int, len(picked))
	for _, id := range picked {
		cfg.BuildingsPerResource[id] = 1 + rng.IntN(levelCap)
	}
	return cfg
}

// pickDistinct returns n distinct ids from candidates using a partial
// Fisher-Yates shuffle on a copy. n is capped at len(candidates).
func pickDistinct(rng *rand.Rand, candidates []models.ResourceID, n int) []models.ResourceID {
	pool := slices.Clone(candidates)
	if n > len(pool) {
		n = len(pool)
	}
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
