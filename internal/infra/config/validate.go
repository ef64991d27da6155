package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateBackend(cfg, ve)
	validateSession(cfg, ve)
	validateCatalog(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateBackend(cfg *Config, ve *ValidationError) {
	b := cfg.Backend
	if b.BaseURL == "" {
		ve.Add("backend.base_url is required")
	} else if u, err := url.Parse(b.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		ve.Add("backend.base_url %q must be an absolute http(s) URL", b.BaseURL)
	}
	for name, p := range map[string]string{"modify_path": b.ModifyPath, "translate_path": b.TranslatePath} {
		if !strings.HasPrefix(p, "/") {
			ve.Add("backend.%s %q must start with /", name, p)
		}
	}
	if b.ConnTimeout < 0 || b.RespTimeout < 0 {
		ve.Add("backend timeouts must be >= 0")
	}
	if b.CircuitBreaker.Enabled && b.CircuitBreaker.MaxFailures == 0 {
		ve.Add("backend.circuit_breaker.max_failures must be > 0 when enabled")
	}
	if b.RateLimit.RequestsPerSecond < 0 {
		ve.Add("backend.rate_limit.requests_per_second must be >= 0")
	}
	if b.RateLimit.RequestsPerSecond > 0 && b.RateLimit.Burst <= 0 {
		ve.Add("backend.rate_limit.burst must be > 0 when a rate is set")
	}
}

// MaxHistoryCapacity bounds session.history_capacity; history lives in memory only.
const MaxHistoryCapacity = 100

func validateSession(cfg *Config, ve *ValidationError) {
	s := cfg.Session
	if s.MinLength <= 0 {
		ve.Add("session.min_length must be > 0")
	}
	if s.DebounceDelay <= 0 {
		ve.Add("session.debounce_delay must be > 0")
	}
	if s.GrammarDebounceDelay <= 0 {
		ve.Add("session.grammar_debounce_delay must be > 0")
	}
	if s.PasteSettle <= 0 {
		ve.Add("session.paste_settle must be > 0")
	}
	if s.HistoryCapacity <= 0 || s.HistoryCapacity > MaxHistoryCapacity {
		ve.Add("session.history_capacity must be between 1 and %d (default 10)", MaxHistoryCapacity)
	}
}

func validateCatalog(cfg *Config, ve *ValidationError) {
	c := cfg.Catalog
	if len(c.Models) == 0 {
		ve.Add("catalog.models must not be empty")
	} else if c.DefaultModel != "" && !slices.Contains(c.Models, c.DefaultModel) {
		ve.Add("catalog.default_model %q is not in catalog.models", c.DefaultModel)
	}
	if len(c.MainLanguages) == 0 {
		ve.Add("catalog.main_languages must not be empty")
	} else if c.DefaultLanguage != "" &&
		!slices.Contains(c.MainLanguages, c.DefaultLanguage) &&
		!slices.Contains(c.AdditionalLanguages, c.DefaultLanguage) {
		ve.Add("catalog.default_language %q is not a known language", c.DefaultLanguage)
	}
}

func validateLogger(cfg *Config, ve *ValidationError) {
	switch strings.ToLower(cfg.Logger.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		ve.Add("logger.level %q must be one of debug, info, warn, error", cfg.Logger.Level)
	}
	switch cfg.Logger.Format {
	case "", "text", "json":
	default:
		ve.Add("logger.format %q must be text or json", cfg.Logger.Format)
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	if !cfg.Tracer.Enabled {
		return
	}
	switch cfg.Tracer.Exporter {
	case "", "noop", "stdout":
	case "file":
		if cfg.Tracer.Output == "" {
			ve.Add("tracer.output is required for the file exporter")
		}
	default:
		ve.Add("tracer.exporter %q must be stdout, file or noop", cfg.Tracer.Exporter)
	}
}
