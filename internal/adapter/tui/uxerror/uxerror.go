// Package uxerror translates raw errors into user-friendly messages with
// recovery hints for the TUI status line and the one-shot commands.
package uxerror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"textkit/internal/adapter/tui/theme"
	"textkit/internal/domain"
)

// FriendlyError is a user-facing error with suggestions for recovery.
type FriendlyError struct {
	Title   string   // short heading, e.g. "Backend Unreachable"
	Message string   // one-liner explanation
	Hints   []string // actionable recovery suggestions
	Raw     string   // original error text (for debug)
}

// Render formats the FriendlyError as a multi-line block.
func (fe FriendlyError) Render() string {
	var sb strings.Builder
	sb.WriteString(fe.Title)
	if fe.Message != "" {
		sb.WriteString("\n  ")
		sb.WriteString(fe.Message)
	}
	if len(fe.Hints) > 0 {
		sb.WriteString("\n  Suggestions:")
		for _, h := range fe.Hints {
			sb.WriteString(fmt.Sprintf("\n    %s %s", theme.SymbolBullet, h))
		}
	}
	return sb.String()
}

// Line formats the FriendlyError on a single line for the status bar.
func (fe FriendlyError) Line() string {
	if fe.Message == "" {
		return fe.Title
	}
	return fe.Title + ": " + fe.Message
}

type errorPattern struct {
	match   func(err error) bool
	produce func(err error) FriendlyError
}

var patterns = []errorPattern{
	// Domain sentinel errors (checked first so errors.Is works through wrapping).
	{
		match:   isErr(domain.ErrCancelled),
		produce: constantError("Request Cancelled", "The request was superseded or aborted.", nil),
	},
	{
		match: isErr(domain.ErrCircuitOpen),
		produce: constantError("Backend Paused", "Too many consecutive backend failures; requests are paused briefly.",
			[]string{"Wait a few seconds and try again", "Check that the backend service is healthy"}),
	},
	{
		match:   statusIs(http.StatusUnauthorized, http.StatusForbidden),
		produce: constantError("Authentication Failed", "The backend rejected the API key.", []string{"Check backend.api_key in textkit.yaml", "Set TEXTKIT_API_KEY"}),
	},
	{
		match:   statusIs(http.StatusTooManyRequests),
		produce: constantError("Rate Limited", "The backend is receiving too many requests.", []string{"Wait a moment before retrying", "Lower backend.rate_limit in config"}),
	},
	{
		match:   statusIs(http.StatusNotFound),
		produce: constantError("Endpoint Not Found", "The backend does not serve the configured path.", []string{"Check backend.modify_path and backend.translate_path"}),
	},
	{
		match: isErr(domain.ErrRequestFailed),
		produce: func(err error) FriendlyError {
			msg := domain.UserErrorMessage
			if status := domain.StatusOf(err); status != 0 {
				msg = fmt.Sprintf("The backend answered with status %d.", status)
			}
			return FriendlyError{Title: "Request Failed", Message: msg, Hints: []string{"Try again later"}, Raw: err.Error()}
		},
	},
	{
		match:   isErr(domain.ErrConfigLoad),
		produce: constantError("Configuration Error", "The config file could not be loaded.", []string{"Check textkit.yaml syntax", "Config files must not be group or world writable"}),
	},
	{
		match:   isErr(domain.ErrDecryption),
		produce: constantError("Decryption Failed", "An encrypted config value could not be decrypted.", []string{"Set TEXTKIT_CONFIG_KEY to the passphrase used with 'textkit encrypt'"}),
	},
	{
		match: isErr(domain.ErrInvalidInput),
		produce: func(err error) FriendlyError {
			return FriendlyError{Title: "Invalid Input", Message: err.Error(), Raw: err.Error()}
		},
	},
	{
		match:   isErr(domain.ErrValidationSkip),
		produce: constantError("Text Too Short", "Enter at least a few characters.", nil),
	},

	// Network / connectivity patterns (string matching for transport errors).
	{
		match:   containsAny("connection refused", "no such host", "dial tcp"),
		produce: constantError("Backend Unreachable", "Could not connect to the backend service.", []string{"Check backend.base_url or TEXTKIT_API_URL", "Make sure the backend is running"}),
	},
	{
		match:   containsAny("deadline exceeded", "timeout"),
		produce: constantError("Request Timed Out", "The backend took too long to answer.", []string{"Try again", "Increase backend.resp_timeout in config"}),
	},
	{
		match:   isErr(domain.ErrNetwork),
		produce: constantError("Network Error", "The request did not reach the backend.", []string{"Check your network connection"}),
	},
	{
		match:   containsAny("clipboard"),
		produce: constantError("Clipboard Unavailable", "The system clipboard could not be used.", []string{"Install xclip, xsel or wl-clipboard"}),
	},
}

// Humanize converts a raw error into a FriendlyError with recovery hints.
func Humanize(err error) FriendlyError {
	if err == nil {
		return FriendlyError{Title: "Unknown Error", Raw: "nil"}
	}

	for _, p := range patterns {
		if p.match(err) {
			fe := p.produce(err)
			fe.Raw = err.Error()
			return fe
		}
	}

	return FriendlyError{
		Title:   "Unexpected Error",
		Message: err.Error(),
		Hints:   []string{"Try again", "Run with TEXTKIT_LOGGER_LEVEL=debug for more details"},
		Raw:     err.Error(),
	}
}

func isErr(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

func statusIs(codes ...int) func(error) bool {
	return func(err error) bool {
		status := domain.StatusOf(err)
		for _, c := range codes {
			if status == c {
				return true
			}
		}
		return false
	}
}

// containsAny returns a match func that checks if the error string contains
// any of the given substrings (case-insensitive).
func containsAny(substrs ...string) func(error) bool {
	return func(err error) bool {
		lower := strings.ToLower(err.Error())
		for _, s := range substrs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}

// constantError returns a produce func that always returns the same FriendlyError.
func constantError(title, message string, hints []string) func(error) FriendlyError {
	return func(err error) FriendlyError {
		return FriendlyError{
			Title:   title,
			Message: message,
			Hints:   hints,
			Raw:     err.Error(),
		}
	}
}
