package tools

import (
	"context"

	"textkit/internal/domain"
	"textkit/internal/usecase/request"
	"textkit/internal/usecase/textsession"
)

// DetectedLabel formats a detected source language for display.
func DetectedLabel(lang string) string {
	if lang == "" {
		return ""
	}
	return "Detected language: " + lang
}

// Translation translates the buffer into the target language. The buffer is
// never modified by responses; results are held separately.
type Translation struct {
	*base

	// guarded by base.mu
	result   string
	detected string
}

// NewTranslation creates a translation tool session.
func NewTranslation(deps Deps, cfg Config) *Translation {
	t := &Translation{base: newBase(domain.ToolTranslation, deps)}
	t.params = domain.Params{
		Model:          deps.Catalog.DefaultModel(),
		TargetLanguage: deps.Catalog.DefaultLanguage(),
	}
	t.session = textsession.New(t.buf, t.process, cfg.sessionOptions()...)
	t.fill = t.fillState
	t.coord.OnChange(t.publishState)
	return t
}

// Result returns the latest translation.
func (t *Translation) Result() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// DetectedLanguage returns the display label of the detected source language.
func (t *Translation) DetectedLanguage() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return DetectedLabel(t.detected)
}

// OnTextChanged records an edit. Input below the minimum length clears the
// displayed result and abandons any in-flight translation.
func (t *Translation) OnTextChanged(text string) uint64 {
	rev := t.session.OnTextChanged(text)
	if !t.session.Qualifies(text) && !t.session.Pasting() {
		t.coord.Cancel()
		t.clearResult()
	}
	t.publishState()
	return rev
}

// SetTargetLanguage switches the target language and reprocesses at once.
func (t *Translation) SetTargetLanguage(lang string) error {
	if t.isClosed() {
		return domain.ErrSessionClosed
	}
	if !t.deps.Catalog.HasLanguage(lang) {
		return domain.NewDomainError("Translation.SetTargetLanguage", domain.ErrInvalidInput, "unknown language "+lang)
	}
	t.mu.Lock()
	t.params.TargetLanguage = lang
	t.mu.Unlock()
	t.reprocess()
	return nil
}

// SetModel switches the model and reprocesses at once.
func (t *Translation) SetModel(model string) error {
	if t.isClosed() {
		return domain.ErrSessionClosed
	}
	if !t.deps.Catalog.HasModel(model) {
		return domain.NewDomainError("Translation.SetModel", domain.ErrInvalidInput, "unknown model "+model)
	}
	t.mu.Lock()
	t.params.Model = model
	t.mu.Unlock()
	t.reprocess()
	return nil
}

// Translate processes the buffer immediately, bypassing debounce.
func (t *Translation) Translate() error {
	if t.isClosed() {
		return domain.ErrSessionClosed
	}
	if !t.session.Qualifies(t.buf.Latest()) {
		return domain.ErrValidationSkip
	}
	t.reprocess()
	return nil
}

// Clear empties the buffer and the result.
func (t *Translation) Clear() {
	if t.isClosed() {
		return
	}
	t.session.CancelPending()
	t.coord.Cancel()
	t.buf.Set("")
	t.clearResult()
	t.publishState()
}

// Close cancels pending and in-flight work and stops publishing.
func (t *Translation) Close() {
	t.close()
}

func (t *Translation) reprocess() {
	t.session.CancelPending()
	t.process(t.buf.Latest())
	t.publishState()
}

func (t *Translation) process(text string) {
	t.issue(func() (request.Call, requestPayload, bool) {
		if !t.session.Qualifies(text) {
			t.clearResult()
			return nil, requestPayload{}, false
		}
		params := t.Params()
		req := domain.TranslateRequest{
			Text:           trimmed(text),
			Model:          params.Model,
			TargetLanguage: params.TargetLanguage,
		}
		call := func(ctx context.Context) (func(), error) {
			resp, err := t.deps.Backend.Translate(ctx, req)
			if err != nil {
				return nil, err
			}
			return func() {
				t.mu.Lock()
				t.result = resp.TranslatedText
				t.detected = resp.DetectedLanguage
				t.mu.Unlock()
			}, nil
		}
		return call, requestPayload{Model: params.Model, TargetLanguage: params.TargetLanguage}, true
	})
}

func (t *Translation) clearResult() {
	t.mu.Lock()
	t.result = ""
	t.detected = ""
	t.mu.Unlock()
}

func (t *Translation) fillState(s *domain.ToolState) {
	s.Result = t.result
	s.DetectedLanguage = DetectedLabel(t.detected)
}
