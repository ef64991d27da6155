package domain

import (
	"context"
	"strings"
)

// Style selects which transformation variant the backend applies.
type Style string

const (
	StyleFix      Style = "fix"
	StyleShorten  Style = "shorten"
	StyleEnhance  Style = "enhance"
	StyleFormal   Style = "formal"
	StyleCasual   Style = "casual"
	StyleRephrase Style = "rephrase"
)

// Styles lists every style in display order.
var Styles = []Style{StyleFix, StyleShorten, StyleEnhance, StyleFormal, StyleCasual, StyleRephrase}

// ParseStyle normalizes a style tag. "shorter" is accepted as an alias of
// "shorten"; matching is case-insensitive.
func ParseStyle(s string) (Style, error) {
	switch v := Style(strings.ToLower(strings.TrimSpace(s))); v {
	case "shorter":
		return StyleShorten, nil
	case StyleFix, StyleShorten, StyleEnhance, StyleFormal, StyleCasual, StyleRephrase:
		return v, nil
	default:
		return "", NewDomainError("ParseStyle", ErrInvalidInput, "unknown style "+s)
	}
}

// Label returns the display name of the style.
func (s Style) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Params is the tool configuration attached to a request. It is a value
// type: a request captures a copy at dispatch time.
type Params struct {
	Model          string
	Style          Style
	TargetLanguage string
}

// ModifyRequest is the body of POST /api/text/modify.
type ModifyRequest struct {
	Type  Style  `json:"type"`
	Text  string `json:"text"`
	Model string `json:"model"`
}

// ModifyResponse is the response of POST /api/text/modify.
type ModifyResponse struct {
	CorrectedText string `json:"correctedText"`
}

// TranslateRequest is the body of POST /api/text/translate.
type TranslateRequest struct {
	Text           string `json:"text"`
	Model          string `json:"model"`
	TargetLanguage string `json:"targetLanguage"`
}

// TranslateResponse is the response of POST /api/text/translate.
type TranslateResponse struct {
	TranslatedText   string `json:"translatedText"`
	DetectedLanguage string `json:"detectedLanguage"`
}

// TextBackend is the remote AI text-processing service.
type TextBackend interface {
	// Modify applies a style transformation to text.
	Modify(ctx context.Context, req ModifyRequest) (*ModifyResponse, error)
	// Translate translates text into the target language.
	Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error)
}

// ToolName identifies a tool orchestrator.
type ToolName string

const (
	ToolGrammar     ToolName = "grammar"
	ToolTranslation ToolName = "translation"
)

// ToolState is a snapshot of a tool session, published to the UI layer.
type ToolState struct {
	SessionID        string
	Tool             ToolName
	Revision         uint64 // increases with every published snapshot
	Text             string // the editable buffer
	TextRevision     uint64 // buffer revision Text was read at
	Result           string // translation output; empty for the grammar tool
	DetectedLanguage string // display-only label
	Loading          bool
	Error            string
	Params           Params
	Autofix          bool
	HistoryCursor    int
	HistoryLen       int
}

// CanGoBack reports whether history navigation backward is possible.
func (s ToolState) CanGoBack() bool { return s.HistoryLen > 0 && s.HistoryCursor > 0 }

// CanGoForward reports whether history navigation forward is possible.
func (s ToolState) CanGoForward() bool { return s.HistoryCursor < s.HistoryLen-1 }
