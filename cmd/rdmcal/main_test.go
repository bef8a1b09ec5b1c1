package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRecord(t *testing.T, dir string) {
	t.Helper()
	doc := "name: IDCC\nlink: https://example.org/idcc\nprofessions: Data Steward\nnext:\n  date-from: \"2025-02-17\"\n"
	if err := os.WriteFile(filepath.Join(dir, "idcc.yaml"), []byte(doc), 0o600); err != nil {
		t.Fatalf("write record: %v", err)
	}
}

func TestReadOnlyCommandsDoNotWriteConfig(t *testing.T) {
	work := t.TempDir()
	data := t.TempDir()
	writeRecord(t, data)
	t.Chdir(work)

	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	if err := app.Run([]string{"rdmcal", "--data", data, "tags"}); err != nil {
		t.Fatalf("tags: %v", err)
	}
	if !strings.Contains(out.String(), "Data Steward") {
		t.Fatalf("unexpected tags output:\n%s", out.String())
	}
	if _, err := os.Stat(filepath.Join(work, "rdmcal.yaml")); !os.IsNotExist(err) {
		t.Fatalf("tags must not create rdmcal.yaml: %v", err)
	}
}

func TestExplicitConfigIsCreated(t *testing.T) {
	data := t.TempDir()
	writeRecord(t, data)
	cfgPath := filepath.Join(t.TempDir(), "rdmcal.yaml")

	app := newApp()
	app.Writer = &bytes.Buffer{}
	if err := app.Run([]string{"rdmcal", "--config", cfgPath, "--data", data, "tags"}); err != nil {
		t.Fatalf("tags: %v", err)
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Fatalf("explicit --config should be written on first run: %v", err)
	}
}
