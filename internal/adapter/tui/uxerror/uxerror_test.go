package uxerror

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"textkit/internal/domain"
)

func TestHumanize(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		title string
	}{
		{"circuit open", fmt.Errorf("%w: open", domain.ErrCircuitOpen), "Backend Paused"},
		{"unauthorized", &domain.RequestError{Status: 401}, "Authentication Failed"},
		{"rate limited", &domain.RequestError{Status: 429}, "Rate Limited"},
		{"server error", &domain.RequestError{Status: 502}, "Request Failed"},
		{"refused", fmt.Errorf("%w: dial tcp 127.0.0.1:8080: connect: connection refused", domain.ErrNetwork), "Backend Unreachable"},
		{"timeout", fmt.Errorf("%w: context deadline exceeded", domain.ErrNetwork), "Request Timed Out"},
		{"network", fmt.Errorf("%w: EOF", domain.ErrNetwork), "Network Error"},
		{"config", fmt.Errorf("%w: parse", domain.ErrConfigLoad), "Configuration Error"},
		{"decrypt", fmt.Errorf("%w: bad key", domain.ErrDecryption), "Decryption Failed"},
		{"invalid model", domain.NewDomainError("Grammar.SetModel", domain.ErrInvalidInput, "unknown model x"), "Invalid Input"},
		{"clipboard", errors.New("write clipboard: exec: xclip not found"), "Clipboard Unavailable"},
		{"unknown", errors.New("something odd"), "Unexpected Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := Humanize(tt.err)
			assert.Equal(t, tt.title, fe.Title)
			assert.Equal(t, tt.err.Error(), fe.Raw)
		})
	}
}

func TestHumanizeStatusInMessage(t *testing.T) {
	fe := Humanize(&domain.RequestError{Status: 503})
	assert.Contains(t, fe.Message, "503")
}

func TestHumanizeNil(t *testing.T) {
	assert.Equal(t, "Unknown Error", Humanize(nil).Title)
}

func TestRenderAndLine(t *testing.T) {
	fe := FriendlyError{Title: "Backend Unreachable", Message: "Could not connect.", Hints: []string{"Start it"}}

	out := fe.Render()
	assert.True(t, strings.HasPrefix(out, "Backend Unreachable\n"))
	assert.Contains(t, out, "Suggestions:")
	assert.Contains(t, out, "Start it")

	assert.Equal(t, "Backend Unreachable: Could not connect.", fe.Line())
	assert.Equal(t, "Only title", FriendlyError{Title: "Only title"}.Line())
}
