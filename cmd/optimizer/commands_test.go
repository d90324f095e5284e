package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/napolitain/solver-simco/internal/prices"
)

func TestPrintRuns(t *testing.T) {
	created := time.Date(2021, 12, 24, 18, 0, 0, 0, time.UTC)
	runs := []prices.RunRecord{
		{ID: "run-b", CreatedAt: created.Add(time.Hour), Objective: "min-loss", Seed: 2, ProfitPerHour: -3.5},
		{ID: "run-a", CreatedAt: created, Objective: "max-latest", Seed: 1, ProfitPerHour: 300.123},
	}

	var buf bytes.Buffer
	if err := printRuns(&buf, runs); err != nil {
		t.Fatalf("printRuns failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"run-a", "run-b", "2021-12-24 18:00", "max-latest", "300.12", "-3.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "run-b") > strings.Index(out, "run-a") {
		t.Errorf("rows reordered:\n%s", out)
	}
}

func TestPrintRunsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := printRuns(&buf, nil); err != nil {
		t.Fatalf("printRuns failed: %v", err)
	}
	if !strings.Contains(strings.ToUpper(buf.String()), "OBJECTIVE") {
		t.Errorf("header missing:\n%s", buf.String())
	}
}
