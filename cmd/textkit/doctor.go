package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"textkit/internal/adapter/backend"
	"textkit/internal/adapter/clipboard"
	"textkit/internal/infra/config"
	"textkit/internal/infra/logger"
)

// CheckStatus represents the result of a health check.
type CheckStatus string

const (
	StatusPass CheckStatus = "PASS"
	StatusWarn CheckStatus = "WARN"
	StatusFail CheckStatus = "FAIL"
)

// CheckResult holds the outcome of a single health check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // optional fix suggestion
}

// Check is a named health check function.
type Check struct {
	Name string
	Fn   func(cfg *config.Config) CheckResult
}

const doctorTimeout = 5 * time.Second

// runDoctor executes all health checks and reports results.
func runDoctor(args []string, w io.Writer) error {
	cfgPath := configPath(args)

	// Try to load config; some checks work without it.
	cfg, cfgErr := config.Load(cfgPath)

	checks := []Check{
		{Name: "Config file", Fn: checkConfigFile(cfgPath, cfgErr)},
		{Name: "Backend", Fn: checkBackend},
		{Name: "API key", Fn: checkAPIKey},
		{Name: "Clipboard", Fn: checkClipboard},
		{Name: "Log output", Fn: checkLogOutput},
	}

	fmt.Fprintln(w, "textkit doctor")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w)

	var pass, warn, fail int
	for _, check := range checks {
		result := check.Fn(cfg)
		result.Name = check.Name

		fmt.Fprintf(w, "  %s %s: %s\n", statusIcon(result.Status), result.Name, result.Message)
		if result.Fix != "" {
			fmt.Fprintf(w, "      Fix: %s\n", result.Fix)
		}

		switch result.Status {
		case StatusPass:
			pass++
		case StatusWarn:
			warn++
		case StatusFail:
			fail++
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintf(w, "Results: %d passed, %d warnings, %d failed\n", pass, warn, fail)

	if fail > 0 {
		fmt.Fprintln(w, "\nFix the FAIL issues above to ensure textkit runs correctly.")
		return fmt.Errorf("%d check(s) failed", fail)
	}
	if warn > 0 {
		fmt.Fprintln(w, "\ntextkit should work, but consider addressing the warnings.")
	} else {
		fmt.Fprintln(w, "\nAll checks passed! textkit is ready to run.")
	}
	return nil
}

func statusIcon(s CheckStatus) string {
	switch s {
	case StatusPass:
		return "[PASS]"
	case StatusWarn:
		return "[WARN]"
	case StatusFail:
		return "[FAIL]"
	default:
		return "[????]"
	}
}

// checkConfigFile reports whether the config file exists and loads. A missing
// file is only a warning because defaults apply.
func checkConfigFile(cfgPath string, cfgErr error) func(*config.Config) CheckResult {
	return func(_ *config.Config) CheckResult {
		if cfgErr != nil {
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("config error: %v", cfgErr),
				Fix:     "Check textkit.yaml syntax and permissions (must not be group or world writable)",
			}
		}

		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusWarn,
				Message: fmt.Sprintf("no config file at %s, using defaults", cfgPath),
				Fix:     "Create textkit.yaml or pass --config PATH",
			}
		}

		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("config loaded from %s", cfgPath),
		}
	}
}

// checkBackend tests whether the backend base URL answers at all.
func checkBackend(cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{
			Status:  StatusFail,
			Message: "cannot check, config not loaded",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), doctorTimeout)
	defer cancel()

	endpoint := strings.TrimRight(cfg.Backend.BaseURL, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("invalid backend URL %q: %v", endpoint, err),
			Fix:     "Set backend.base_url or " + config.EnvAPIURL,
		}
	}

	start := time.Now()
	resp, err := backend.NewHTTPClient(cfg.Backend).Do(req)
	latency := time.Since(start)
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("cannot reach %s: %v", endpoint, err),
			Fix:     "Make sure the backend is running and backend.base_url is correct",
		}
	}
	resp.Body.Close()

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s reachable (status %d, latency: %dms)", endpoint, resp.StatusCode, latency.Milliseconds()),
	}
}

// checkAPIKey reports whether requests carry an Authorization header.
func checkAPIKey(cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{
			Status:  StatusFail,
			Message: "cannot check, config not loaded",
		}
	}
	if cfg.Backend.APIKey == "" {
		return CheckResult{
			Status:  StatusWarn,
			Message: "no API key configured, requests are sent without Authorization",
			Fix:     "Set backend.api_key or " + config.EnvAPIKey + " if your backend requires one",
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: "API key configured",
	}
}

// checkClipboard reports whether copy and paste will work.
func checkClipboard(_ *config.Config) CheckResult {
	if !clipboard.Supported() {
		return CheckResult{
			Status:  StatusWarn,
			Message: "no clipboard utility found, copy and clipboard input are disabled",
			Fix:     "Install xclip, xsel or wl-clipboard",
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: "system clipboard available",
	}
}

// checkLogOutput verifies a file log output can be written.
func checkLogOutput(cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{
			Status:  StatusFail,
			Message: "cannot check, config not loaded",
		}
	}

	switch cfg.Logger.Output {
	case "", "stdout", "stderr":
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("logging to %s (the editor logs to ./%s)", outputName(cfg.Logger.Output), logger.TUIOutput),
		}
	case "discard":
		return CheckResult{
			Status:  StatusPass,
			Message: "logging disabled",
		}
	}

	dir := filepath.Dir(cfg.Logger.Output)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("log directory %s does not exist", dir),
			Fix:     fmt.Sprintf("Create the directory: mkdir -p %s", dir),
		}
	}

	// Check writability by creating a temp file.
	f, err := os.CreateTemp(dir, ".doctor-check-*")
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("log directory %s is not writable: %v", dir, err),
			Fix:     fmt.Sprintf("Fix permissions: chmod 755 %s", dir),
		}
	}
	f.Close()
	os.Remove(f.Name())

	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("logging to %s", cfg.Logger.Output),
	}
}

func outputName(output string) string {
	if output == "" {
		return "stderr"
	}
	return output
}
