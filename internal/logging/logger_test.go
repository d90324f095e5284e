package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToStderrAndFile(t *testing.T) {
	var stderr bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "optimizer.log")

	logger, closeFn, err := New(Options{File: path, Stderr: &stderr})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("best_accepted", "trial", 7)
	logger.Debug("trial_skipped", "trial", 8)
	if err := closeFn(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for name, out := range map[string]string{"stderr": stderr.String(), "file": string(data)} {
		if !strings.Contains(out, "best_accepted") || !strings.Contains(out, "trial=7") {
			t.Errorf("%s missing info record: %q", name, out)
		}
		if strings.Contains(out, "trial_skipped") {
			t.Errorf("%s has debug record without verbose: %q", name, out)
		}
	}
}

func TestVerboseEnablesDebug(t *testing.T) {
	var stderr bytes.Buffer
	logger, closeFn, err := New(Options{Verbose: true, Stderr: &stderr})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer closeFn()
	logger.Debug("trial_skipped")
	if !strings.Contains(stderr.String(), "trial_skipped") {
		t.Errorf("debug record missing: %q", stderr.String())
	}
}
