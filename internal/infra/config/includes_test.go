package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIncludesSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "catalog.yaml", `
catalog:
  models: ["gemma-3-27b-it", "gemini-2.5-flash", "gemini-2.5-pro"]
`)
	path := writeConfigFile(t, dir, "textkit.yaml", `
includes:
  - "catalog.yaml"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Catalog.Models) != 3 || cfg.Catalog.Models[2] != "gemini-2.5-pro" {
		t.Errorf("models not loaded from include: %v", cfg.Catalog.Models)
	}
}

func TestIncludesGlobPattern(t *testing.T) {
	dir := t.TempDir()
	subdir := filepath.Join(dir, "conf.d")
	if err := os.Mkdir(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeConfigFile(t, subdir, "backend.yaml", `
backend:
  base_url: "https://include.example.com"
`)
	writeConfigFile(t, subdir, "logger.yaml", `
logger:
  format: "json"
`)
	path := writeConfigFile(t, dir, "textkit.yaml", `
includes:
  - "conf.d/*.yaml"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.BaseURL != "https://include.example.com" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Logger.Format != "json" {
		t.Errorf("Logger.Format = %q", cfg.Logger.Format)
	}
}

func TestIncludesMainFileWins(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "base.yaml", `
logger:
  level: "debug"
  format: "json"
`)
	path := writeConfigFile(t, dir, "textkit.yaml", `
includes: ["base.yaml"]
logger:
  level: "warn"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logger.Level != "warn" {
		t.Errorf("Level = %q, main file should win", cfg.Logger.Level)
	}
	if cfg.Logger.Format != "json" {
		t.Errorf("Format = %q, include should apply", cfg.Logger.Format)
	}
}

func TestIncludesCircular(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "a.yaml", `includes: ["b.yaml"]`)
	writeConfigFile(t, dir, "b.yaml", `includes: ["a.yaml"]`)
	path := writeConfigFile(t, dir, "textkit.yaml", `includes: ["a.yaml"]`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "circular include") {
		t.Fatalf("expected circular include error, got %v", err)
	}
}

func TestIncludesPathTraversal(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "textkit.yaml", `includes: ["../outside.yaml"]`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "escapes config directory") {
		t.Fatalf("expected traversal error, got %v", err)
	}
}

func TestIncludesMissingLiteralFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "textkit.yaml", `includes: ["nope.yaml"]`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing include")
	}
}

func TestIncludesGlobMatchingNothing(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "textkit.yaml", `includes: ["conf.d/*.yaml"]`)

	if _, err := Load(path); err != nil {
		t.Fatalf("empty glob should not fail: %v", err)
	}
}
