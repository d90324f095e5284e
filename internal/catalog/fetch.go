package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/napolitain/solver-simco/internal/logging"
	"github.com/napolitain/solver-simco/internal/models"
)

const (
	DefaultBaseURL      = "https://www.simcompanies.com"
	encyclopediaPath    = "/api/v3/en/encyclopedia/resources/"
	defaultRequestEvery = 500 * time.Millisecond
)

// NotSellable lists the resources the exchange does not trade
var NotSellable = []models.ResourceID{
	"sub-orbital-rocket", "sub-orbital-2nd-stage", "orbital-booster", "starship", "bfr",
	"jumbo-jet", "luxury-jet", "single-engine-plane", "satellite", "aerospace-research",
}

// Fetcher downloads encyclopedia entries at a bounded request rate
type Fetcher struct {
	BaseURL     string
	Client      *http.Client
	Limiter     *rate.Limiter
	NotSellable map[models.ResourceID]bool
	Logger      *slog.Logger
}

// NewFetcher creates a fetcher issuing at most one request per interval
func NewFetcher(baseURL string, every time.Duration) *Fetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if every <= 0 {
		every = defaultRequestEvery
	}
	return &Fetcher{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		Client:      &http.Client{Timeout: 30 * time.Second},
		Limiter:     rate.NewLimiter(rate.Every(every), 1),
		NotSellable: notSellableSet(NotSellable),
		Logger:      logging.Discard(),
	}
}

// FetchResource downloads and parses one encyclopedia entry by its numeric index
func (f *Fetcher) FetchResource(ctx context.Context, index int) (*models.ResourceNode, error) {
	if err := f.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s%s0/%d/", f.BaseURL, encyclopediaPath, index)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch resource %d: %w", index, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch resource %d: unexpected status %s", index, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read resource %d: %w", index, err)
	}
	return ParseEncyclopedia(body, f.NotSellable)
}

// FetchAll downloads the given indices and builds a catalog.
// Entries that fail to download are logged and skipped, along with every
// resource that needs one of them as an input.
func (f *Fetcher) FetchAll(ctx context.Context, indices []int, transportID models.ResourceID) (*Catalog, error) {
	var nodes []*models.ResourceNode
	for _, idx := range indices {
		node, err := f.FetchResource(ctx, idx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			f.Logger.Warn("resource_fetch_failed", "index", idx, "error", err)
			continue
		}
		f.Logger.Debug("resource_fetched", "index", idx, "id", node.ID)
		nodes = append(nodes, node)
	}
	return New(f.dropIncomplete(nodes), transportID)
}

// dropIncomplete removes resources whose recipe needs a resource that was not
// fetched, repeating until every remaining input is present.
func (f *Fetcher) dropIncomplete(nodes []*models.ResourceNode) []*models.ResourceNode {
	for {
		have := make(map[models.ResourceID]bool, len(nodes))
		for _, n := range nodes {
			have[n.ID] = true
		}
		kept := make([]*models.ResourceNode, 0, len(nodes))
		for _, n := range nodes {
			missing := ""
			for _, in := range n.Inputs {
				if !have[in.ResourceID] {
					missing = string(in.ResourceID)
					break
				}
			}
			if missing != "" {
				f.Logger.Warn("resource_dropped", "id", n.ID, "missing_input", missing)
				continue
			}
			kept = append(kept, n)
		}
		if len(kept) == len(nodes) {
			return kept
		}
		nodes = kept
	}
}

func notSellableSet(ids []models.ResourceID) map[models.ResourceID]bool {
	set := make(map[models.ResourceID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
