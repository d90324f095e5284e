// Package search looks for profitable company configurations by random
// sampling. Trials run on a pool of workers; a single aggregator applies
// their results in trial order and keeps the sequence of new bests.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/napolitain/solver-simco/internal/history"
	"github.com/napolitain/solver-simco/internal/logging"
	"github.com/napolitain/solver-simco/internal/models"
	"github.com/napolitain/solver-simco/internal/objective"
	"github.com/napolitain/solver-simco/internal/production"
)

// Catalog is the resource lookup used for simulation and sampling
type Catalog interface {
	production.Catalog
	Sellable(excluded ...models.ResourceID) []models.ResourceID
}

// PriceHistory provides the latest prices and past snapshot windows
type PriceHistory interface {
	Latest() (*models.PriceSnapshot, error)
	Window(lookback, step time.Duration) []*models.PriceSnapshot
}

// Result is the outcome of one optimization run
type Result struct {
	Seed      int64            `json:"seed"`
	Objective models.Objective `json:"objective"`

	// Accepted holds every trial that set a new best, in trial order
	Accepted []*models.ProductionStatistic `json:"accepted"`

	Trials    int           `json:"trials"`
	Evaluated int           `json:"evaluated"`
	Discarded int           `json:"discarded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
}

// Best returns the last accepted result, or nil when no trial succeeded
func (r *Result) Best() *models.ProductionStatistic {
	if r == nil || len(r.Accepted) == 0 {
		return nil
	}
	return r.Accepted[len(r.Accepted)-1]
}

// Optimizer runs the random search. Catalog and price data are loaded
// before the first trial; trials never touch disk or network.
type Optimizer struct {
	catalog    Catalog
	sim        *production.Simulator
	trialEval  *history.Evaluator
	bestEval   *history.Evaluator
	opts       Options
	logger     *slog.Logger
	latest     *models.PriceSnapshot
	window     []*models.PriceSnapshot
	candidates []models.ResourceID
}

// New prepares an optimizer. Missing price data or an unusable pool is
// reported here, before any trial runs.
func New(cat Catalog, prices PriceHistory, opts Options) (*Optimizer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	latest, err := prices.Latest()
	if err != nil {
		return nil, fmt.Errorf("latest prices: %w", err)
	}

	sim := production.NewSimulator(cat)
	o := &Optimizer{
		catalog:   cat,
		sim:       sim,
		trialEval: history.NewEvaluator(sim, 1),
		bestEval:  history.NewEvaluator(sim, 0),
		opts:      opts,
		logger:    logger,
		latest:    latest,
	}

	if opts.needsHistory() || opts.HistoryForAllBest {
		o.window = prices.Window(opts.Lookback, opts.HistoryStep)
		if len(o.window) == 0 && opts.needsHistory() {
			return nil, fmt.Errorf("objective %s: %w", opts.Objective, models.ErrEmptyPriceHistory)
		}
	}

	if len(opts.Resources) > 0 {
		for _, id := range opts.Resources {
			if _, err := cat.Get(id); err != nil {
				return nil, fmt.Errorf("resource pool: %w", err)
			}
		}
	} else {
		o.candidates = cat.Sellable(opts.Excluded...)
		if len(o.candidates) == 0 {
			return nil, fmt.Errorf("%w: no sellable resources to choose from", models.ErrInvalidConfiguration)
		}
	}
	return o, nil
}

type trialResult struct {
	index     int
	stat      *models.ProductionStatistic
	discarded bool
	err       error
}

// Run executes the configured number of trials. Cancelling ctx stops new
// trials from starting; trials already running finish and are applied.
// The accepted sequence is the same for any worker count.
func (o *Optimizer) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	workers := o.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	res := &Result{Seed: o.opts.Seed, Objective: o.opts.Objective}

	o.logger.Info("run_start",
		"seed", o.opts.Seed,
		"objective", o.opts.Objective.String(),
		"generations", o.opts.Generations,
		"workers", workers)

	jobs := make(chan int)
	results := make(chan trialResult, workers)

	go func() {
		defer close(jobs)
		for i := 0; i < o.opts.Generations; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results <- o.trial(ctx, i)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// Results arrive in any order; apply them strictly by trial index
	pending := make(map[int]trialResult)
	next := 0
	var best *models.ProductionStatistic
	for r := range results {
		pending[r.index] = r
		for {
			p, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			best = o.apply(ctx, res, p, best)
		}
	}

	res.Duration = time.Since(start)
	o.logger.Info("run_finished",
		"seed", o.opts.Seed,
		"trials", res.Trials,
		"accepted", len(res.Accepted),
		"discarded", res.Discarded,
		"failed", res.Failed,
		"duration", res.Duration)

	if err := ctx.Err(); err != nil && res.Trials < o.opts.Generations {
		return res, err
	}
	return res, nil
}

// trial samples and evaluates one configuration. It owns everything it creates.
func (o *Optimizer) trial(ctx context.Context, index int) trialResult {
	cfg := o.sample(trialRand(o.opts.Seed, index))
	if cfg.TotalBuildings() == 0 {
		return trialResult{index: index, discarded: true}
	}
	if err := cfg.Validate(o.opts.MaxBuildingLevel); err != nil {
		return trialResult{index: index, discarded: true, err: err}
	}

	stat, err := o.sim.Simulate(cfg, o.latest)
	if err != nil {
		return trialResult{index: index, err: err}
	}
	stat.Trial = index

	if o.opts.needsHistory() {
		h, err := o.trialEval.Evaluate(ctx, cfg, o.window)
		if err != nil {
			return trialResult{index: index, err: err}
		}
		stat.History = h
	}
	return trialResult{index: index, stat: stat}
}

// apply is only called from the aggregator, so best needs no locking
func (o *Optimizer) apply(ctx context.Context, res *Result, r trialResult, best *models.ProductionStatistic) *models.ProductionStatistic {
	res.Trials++
	switch {
	case r.discarded:
		res.Discarded++
		reason := "no buildings"
		if r.err != nil {
			reason = r.err.Error()
		}
		o.logger.Debug("trial_discarded", "trial", r.index, "reason", reason)
		return best
	case r.err != nil:
		res.Failed++
		o.logger.Debug("trial_failed", "trial", r.index, "error", r.err)
		return best
	}
	res.Evaluated++

	if !objective.Better(r.stat, best, o.opts.Objective) {
		return best
	}

	if o.opts.HistoryForAllBest && r.stat.History == nil && len(o.window) > 0 {
		h, err := o.bestEval.Evaluate(ctx, r.stat.Configuration, o.window)
		if err != nil {
			o.logger.Warn("best_history_failed", "trial", r.index, "error", err)
		} else {
			r.stat.History = h
		}
	}

	res.Accepted = append(res.Accepted, r.stat)
	o.logger.Info("best_accepted",
		"trial", r.index,
		"score", objective.Score(r.stat, o.opts.Objective),
		"profit_per_hour", r.stat.TotalProfitPerHour,
		"buildings", r.stat.Configuration.TotalBuildings(),
		"calc", r.stat.CalculationDuration)
	return r.stat
}
