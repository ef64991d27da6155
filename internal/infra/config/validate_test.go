package config

import (
	"errors"
	"strings"
	"testing"
)

func requireValidationError(t *testing.T, cfg *Config, want string) {
	t.Helper()
	err := Validate(cfg)
	if err == nil {
		t.Fatalf("expected validation error containing %q", want)
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not mention %q", err, want)
	}
}

func TestValidateBaseURL(t *testing.T) {
	cfg := Defaults()
	cfg.Backend.BaseURL = ""
	requireValidationError(t, cfg, "backend.base_url is required")

	cfg.Backend.BaseURL = "localhost:8080"
	requireValidationError(t, cfg, "absolute http(s) URL")

	cfg.Backend.BaseURL = "ftp://example.com"
	requireValidationError(t, cfg, "absolute http(s) URL")
}

func TestValidatePaths(t *testing.T) {
	cfg := Defaults()
	cfg.Backend.TranslatePath = "api/translate"
	requireValidationError(t, cfg, "backend.translate_path")
}

func TestValidateCircuitBreaker(t *testing.T) {
	cfg := Defaults()
	cfg.Backend.CircuitBreaker.MaxFailures = 0
	requireValidationError(t, cfg, "max_failures")

	cfg.Backend.CircuitBreaker.Enabled = false
	if err := Validate(cfg); err != nil {
		t.Errorf("disabled breaker should not be checked: %v", err)
	}
}

func TestValidateRateLimit(t *testing.T) {
	cfg := Defaults()
	cfg.Backend.RateLimit = RateLimitConfig{RequestsPerSecond: 1}
	requireValidationError(t, cfg, "burst")

	cfg.Backend.RateLimit = RateLimitConfig{}
	if err := Validate(cfg); err != nil {
		t.Errorf("zero rate disables limiting: %v", err)
	}
}

func TestValidateSession(t *testing.T) {
	cfg := Defaults()
	cfg.Session.MinLength = 0
	cfg.Session.PasteSettle = 0
	err := Validate(cfg)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(ve.Errors) != 2 {
		t.Errorf("expected 2 accumulated errors, got %v", ve.Errors)
	}
}

func TestValidateHistoryCapacity(t *testing.T) {
	cfg := Defaults()
	if err := Validate(cfg); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	for _, n := range []int{0, -1, MaxHistoryCapacity + 1} {
		cfg := Defaults()
		cfg.Session.HistoryCapacity = n
		requireValidationError(t, cfg, "session.history_capacity must be between 1 and 100")
	}

	cfg.Session.HistoryCapacity = 25
	if err := Validate(cfg); err != nil {
		t.Errorf("capacity 25 should be accepted: %v", err)
	}
}

func TestValidateCatalog(t *testing.T) {
	cfg := Defaults()
	cfg.Catalog.DefaultModel = "unknown-model"
	requireValidationError(t, cfg, "catalog.default_model")

	cfg = Defaults()
	cfg.Catalog.DefaultLanguage = "Japanese"
	if err := Validate(cfg); err != nil {
		t.Errorf("additional languages are valid defaults: %v", err)
	}

	cfg.Catalog.DefaultLanguage = "Klingon"
	requireValidationError(t, cfg, "catalog.default_language")

	cfg = Defaults()
	cfg.Catalog.Models = nil
	requireValidationError(t, cfg, "catalog.models must not be empty")
}

func TestValidateLogger(t *testing.T) {
	cfg := Defaults()
	cfg.Logger.Level = "verbose"
	requireValidationError(t, cfg, "logger.level")

	cfg = Defaults()
	cfg.Logger.Format = "xml"
	requireValidationError(t, cfg, "logger.format")
}

func TestValidateTracer(t *testing.T) {
	cfg := Defaults()
	cfg.Tracer.Enabled = true
	cfg.Tracer.Exporter = "jaeger"
	requireValidationError(t, cfg, "tracer.exporter")

	cfg.Tracer.Exporter = "file"
	requireValidationError(t, cfg, "tracer.output")

	cfg.Tracer.Output = "traces.json"
	if err := Validate(cfg); err != nil {
		t.Errorf("file exporter with output should validate: %v", err)
	}
}
