package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/napolitain/solver-simco/internal/models"
)

const dataDir = "../../data"

func TestLoadFixture(t *testing.T) {
	c, err := LoadDir(dataDir)
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	if c.Transport() != "transport" {
		t.Errorf("transport = %s", c.Transport())
	}
	apples, err := c.Get("apples")
	if err != nil {
		t.Fatalf("Get(apples) failed: %v", err)
	}
	if len(apples.Inputs) != 2 || apples.ProducedPerHour <= 0 || !apples.Sellable {
		t.Errorf("unexpected apples node: %+v", apples)
	}
	for _, id := range c.Sellable() {
		if id == "satellite" {
			t.Error("satellite must not be sellable")
		}
	}
	ids := c.IDs()
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("ids not sorted: %v", ids)
		}
	}
}

func TestNewValidates(t *testing.T) {
	tests := []struct {
		name  string
		nodes []*models.ResourceNode
		is    error
	}{
		{"missing input", []*models.ResourceNode{
			{ID: "a", Inputs: []models.InputResource{{ResourceID: "ghost", AmountPerUnit: 1}}},
		}, models.ErrResourceNotFound},
		{"duplicate", []*models.ResourceNode{{ID: "a"}, {ID: "a"}}, nil},
		{"empty id", []*models.ResourceNode{{Name: "Nameless"}}, nil},
		{"negative rate", []*models.ResourceNode{{ID: "a", ProducedPerHour: -1}}, nil},
		{"negative amount", []*models.ResourceNode{
			{ID: "a", Inputs: []models.InputResource{{ResourceID: "b", AmountPerUnit: -1}}}, {ID: "b"},
		}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.nodes, "")
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("err = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestGetUnknown(t *testing.T) {
	c, err := New([]*models.ResourceNode{{ID: "a"}}, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get("b"); !errors.Is(err, models.ErrResourceNotFound) {
		t.Errorf("err = %v, want ErrResourceNotFound", err)
	}
	if c.Transport() != DefaultTransportID {
		t.Errorf("transport = %s, want default", c.Transport())
	}
}

func TestSellableExcludes(t *testing.T) {
	c, err := New([]*models.ResourceNode{
		{ID: "c", Sellable: true}, {ID: "a", Sellable: true}, {ID: "b", Sellable: true}, {ID: "x"},
	}, "")
	if err != nil {
		t.Fatal(err)
	}
	got := c.Sellable("b")
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("Sellable(b) = %v, want [a c]", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c, err := LoadDir(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), FileName)
	if err := Save(path, c); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if back.Len() != c.Len() || back.Transport() != c.Transport() {
		t.Errorf("round trip changed catalog: %d/%s vs %d/%s", back.Len(), back.Transport(), c.Len(), c.Transport())
	}
	orig, _ := c.Get("processors")
	got, _ := back.Get("processors")
	if got.ProducedPerHour != orig.ProducedPerHour || len(got.Inputs) != len(orig.Inputs) {
		t.Errorf("processors changed: %+v vs %+v", got, orig)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]models.ResourceID{
		"Crude oil":             "crude-oil",
		"  Power ":              "power",
		"Sub-orbital 2nd stage": "sub-orbital-2nd-stage",
		"BFR":                   "bfr",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %s, want %s", in, got, want)
		}
	}
}

const applesJSON = `{
	"db_letter": 3,
	"name": "Apples",
	"transportation": 1,
	"producedAnHour": 151.52,
	"baseSalary": 138,
	"producedFrom": [
		{"resource": {"db_letter": 2, "name": "Water"}, "amount": 2},
		{"resource": {"db_letter": 66, "name": "Seeds"}, "amount": 1}
	]
}`

func TestParseEncyclopedia(t *testing.T) {
	node, err := ParseEncyclopedia([]byte(applesJSON), nil)
	if err != nil {
		t.Fatalf("ParseEncyclopedia failed: %v", err)
	}
	if node.ID != "apples" || node.ProducedPerHour != 151.52 || node.BaseLaborCost != 138 ||
		node.TransportCostPerUnit != 1 || !node.Sellable {
		t.Errorf("unexpected node: %+v", node)
	}
	if len(node.Inputs) != 2 || node.Inputs[0].ResourceID != "water" || node.Inputs[1].AmountPerUnit != 1 {
		t.Errorf("unexpected inputs: %+v", node.Inputs)
	}

	node, err = ParseEncyclopedia([]byte(applesJSON), map[models.ResourceID]bool{"apples": true})
	if err != nil || node.Sellable {
		t.Errorf("not-sellable list ignored: %+v, %v", node, err)
	}

	for _, bad := range []string{`{`, `{"producedAnHour": 3}`} {
		if _, err := ParseEncyclopedia([]byte(bad), nil); err == nil {
			t.Errorf("expected error for %s", bad)
		}
	}
}

func TestFetcher(t *testing.T) {
	docs := map[string]string{
		"2":  `{"name": "Water", "producedAnHour": 593.69, "baseSalary": 138, "transportation": 1, "producedFrom": []}`,
		"3":  applesJSON,
		"66": `{"name": "Seeds", "producedAnHour": 260.87, "baseSalary": 138, "producedFrom": [{"resource": {"name": "Water"}, "amount": 0.1}]}`,
		"13": `{"name": "Transport", "producedAnHour": 1103.45, "baseSalary": 138}`,
	}
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		idx := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v3/en/encyclopedia/resources/0/"), "/")
		doc, ok := docs[idx]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, doc)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, time.Millisecond)
	c, err := f.FetchAll(context.Background(), []int{2, 3, 66, 13, 999}, "")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if c.Len() != 4 {
		t.Errorf("catalog has %d resources, want 4", c.Len())
	}
	if requests.Load() != 5 {
		t.Errorf("requests = %d, want 5", requests.Load())
	}
	if _, err := c.Get("seeds"); err != nil {
		t.Errorf("seeds missing: %v", err)
	}
}

func TestFetcherDropsResourcesWithMissingInputs(t *testing.T) {
	docs := map[string]string{
		"2": `{"name": "Water", "producedAnHour": 593.69, "baseSalary": 138, "producedFrom": []}`,
		"3": applesJSON,
		"4": `{"name": "Cider", "producedAnHour": 50, "baseSalary": 138, "producedFrom": [{"resource": {"name": "Apples"}, "amount": 3}]}`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idx := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v3/en/encyclopedia/resources/0/"), "/")
		doc, ok := docs[idx]
		if !ok {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, doc)
	}))
	defer srv.Close()

	// seeds (66) fails, so apples and cider, which needs apples, are dropped
	c, err := NewFetcher(srv.URL, time.Millisecond).FetchAll(context.Background(), []int{2, 3, 4, 66}, "")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("catalog has %d resources, want only water", c.Len())
	}
	for _, id := range []models.ResourceID{"apples", "cider"} {
		if _, err := c.Get(id); !errors.Is(err, models.ErrResourceNotFound) {
			t.Errorf("%s kept without its inputs: %v", id, err)
		}
	}
}

func TestFetcherHonoursContext(t *testing.T) {
	f := NewFetcher("http://127.0.0.1:1", time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.FetchAll(ctx, []int{1, 2}, ""); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
