package tools

import (
	"context"

	"textkit/internal/domain"
	"textkit/internal/usecase/history"
	"textkit/internal/usecase/request"
	"textkit/internal/usecase/textsession"
)

// Grammar corrects or restyles the buffer in place. Every successful request
// replaces the buffer and records the submitted and returned text in history.
type Grammar struct {
	*base
	history *history.Log

	// guarded by base.mu
	autofix       bool
	inflightStyle domain.Style
}

// NewGrammar creates a grammar tool session. Autofix starts disabled.
func NewGrammar(deps Deps, cfg Config) *Grammar {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = GrammarDebounceDelay
	}
	g := &Grammar{
		base:    newBase(domain.ToolGrammar, deps),
		history: history.New(cfg.HistoryCapacity, ""),
	}
	g.params = domain.Params{Model: deps.Catalog.DefaultModel(), Style: domain.StyleFix}
	g.session = textsession.New(g.buf, nil, cfg.sessionOptions()...)
	g.fill = g.fillState
	g.coord.OnChange(g.publishState)
	return g
}

// Autofix reports whether typing triggers fix requests.
func (g *Grammar) Autofix() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.autofix
}

// History returns a copy of the history entries.
func (g *Grammar) History() []string { return g.history.Entries() }

// HistoryCursor returns the history cursor.
func (g *Grammar) HistoryCursor() int { return g.history.Cursor() }

// SetAutofix toggles automatic fixing. Turning it on with a qualifying buffer
// fixes the buffer immediately.
func (g *Grammar) SetAutofix(on bool) {
	if g.isClosed() {
		return
	}
	g.mu.Lock()
	g.autofix = on
	g.mu.Unlock()

	g.session.CancelPending()
	if on {
		g.session.SetProcessor(g.autoProcess)
		g.issueStyle(domain.StyleFix, g.buf.Latest())
	} else {
		g.session.SetProcessor(nil)
	}
	g.publishState()
}

// ApplyStyle restyles the buffer immediately. Input below the minimum length
// is skipped with domain.ErrValidationSkip.
func (g *Grammar) ApplyStyle(style domain.Style) error {
	if g.isClosed() {
		return domain.ErrSessionClosed
	}
	if style == "" {
		style = domain.StyleFix
	}
	text := g.buf.Latest()
	if !g.session.Qualifies(text) {
		return domain.ErrValidationSkip
	}
	g.mu.Lock()
	g.params.Style = style
	g.mu.Unlock()

	g.session.CancelPending()
	g.issueStyle(style, text)
	return nil
}

// SetModel switches the model. A qualifying buffer is reprocessed right away
// when autofix is on, or when a request is in flight (its style is re-issued
// with the new model). Otherwise the buffer is left alone.
func (g *Grammar) SetModel(model string) error {
	if g.isClosed() {
		return domain.ErrSessionClosed
	}
	if !g.deps.Catalog.HasModel(model) {
		return domain.NewDomainError("Grammar.SetModel", domain.ErrInvalidInput, "unknown model "+model)
	}
	inFlight := g.coord.Loading()

	g.mu.Lock()
	g.params.Model = model
	autofix := g.autofix
	style := g.inflightStyle
	g.mu.Unlock()

	g.session.CancelPending()
	text := g.buf.Latest()
	switch {
	case !g.session.Qualifies(text):
	case autofix:
		g.issueStyle(domain.StyleFix, text)
	case inFlight && style != "":
		g.issueStyle(style, text)
	}
	g.publishState()
	return nil
}

// Back loads the previous history entry into the buffer.
func (g *Grammar) Back() bool {
	return g.navigate(g.history.Back)
}

// Forward loads the next history entry into the buffer.
func (g *Grammar) Forward() bool {
	return g.navigate(g.history.Forward)
}

func (g *Grammar) navigate(step func() (string, bool)) bool {
	if g.isClosed() {
		return false
	}
	entry, ok := step()
	if !ok {
		return false
	}
	g.session.CancelPending()
	g.buf.Set(entry)
	g.publishState()
	return true
}

// Clear empties the buffer and records the empty state in history.
func (g *Grammar) Clear() {
	if g.isClosed() {
		return
	}
	g.session.CancelPending()
	g.coord.Cancel()
	g.buf.Set("")
	g.history.Append("")
	g.publishState()
}

// Close cancels pending and in-flight work and stops publishing.
func (g *Grammar) Close() {
	g.close()
}

func (g *Grammar) autoProcess(text string) {
	g.issueStyle(domain.StyleFix, text)
}

func (g *Grammar) issueStyle(style domain.Style, text string) {
	g.issue(func() (request.Call, requestPayload, bool) {
		submitted := trimmed(text)
		if !g.session.Qualifies(submitted) {
			return nil, requestPayload{}, false
		}
		// text was read before issueMu; an edit since then owns the next request.
		cur, rev := g.buf.Snapshot()
		if cur != text {
			g.logger.Debug("buffer edited before dispatch, request skipped")
			return nil, requestPayload{}, false
		}

		g.mu.Lock()
		params := g.params
		g.inflightStyle = style
		g.mu.Unlock()
		params.Style = style

		req := domain.ModifyRequest{Type: style, Text: submitted, Model: params.Model}
		call := func(ctx context.Context) (func(), error) {
			resp, err := g.deps.Backend.Modify(ctx, req)
			if err != nil {
				return nil, err
			}
			result := trimmed(resp.CorrectedText)
			return func() { g.apply(rev, submitted, result) }, nil
		}
		return call, requestPayload{Style: style, Model: params.Model}, true
	})
}

// apply runs under the coordinator's lock for the current request only.
func (g *Grammar) apply(rev uint64, submitted, result string) {
	g.mu.Lock()
	g.inflightStyle = ""
	g.mu.Unlock()

	if !g.buf.SetIf(rev, result) {
		g.logger.Debug("buffer edited during request, result dropped")
		return
	}
	g.history.Append(submitted)
	g.history.Append(result)
}

func (g *Grammar) fillState(s *domain.ToolState) {
	s.Autofix = g.autofix
	s.HistoryCursor = g.history.Cursor()
	s.HistoryLen = g.history.Len()
}
