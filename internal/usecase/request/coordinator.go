// Package request coordinates remote calls so that only the most recently
// issued request for a tool may affect shared state.
package request

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"textkit/internal/domain"
)

// Call performs a remote exchange. On success it returns a commit closure that
// applies the result; commit is invoked only if the request is still current.
type Call func(ctx context.Context) (commit func(), err error)

// Coordinator tracks at most one in-flight request. Issuing a new request
// cancels the previous one, whose result is then discarded unconditionally.
type Coordinator struct {
	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	loading  bool
	errMsg   string
	lastErr  error
	onChange func()
	logger   *slog.Logger
	name     string
	wg       sync.WaitGroup
}

// New creates a coordinator. name tags log lines.
func New(name string, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{name: name, logger: logger}
}

// OnChange registers fn to be called after loading or error state changes.
// fn runs outside the coordinator's lock.
func (c *Coordinator) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Send supersedes any outstanding request and runs call. It blocks until
// call returns. A superseded or cancelled request returns domain.ErrCancelled
// and leaves loading and error state alone.
func (c *Coordinator) Send(ctx context.Context, call Call) error {
	reqCtx, gen, cancel := c.begin(ctx)
	return c.run(reqCtx, gen, cancel, call)
}

// Start supersedes any outstanding request synchronously, then runs call on
// a new goroutine. done, if non-nil, receives the result Send would return.
func (c *Coordinator) Start(ctx context.Context, call Call, done func(error)) {
	reqCtx, gen, cancel := c.begin(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		err := c.run(reqCtx, gen, cancel, call)
		if done != nil {
			done(err)
		}
	}()
}

// Wait blocks until every request started with Start has settled.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) begin(ctx context.Context) (context.Context, uint64, context.CancelFunc) {
	c.mu.Lock()
	c.abortLocked()
	c.gen++
	gen := c.gen
	reqCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.loading = true
	c.errMsg = ""
	c.lastErr = nil
	c.mu.Unlock()
	c.notify()
	return reqCtx, gen, cancel
}

func (c *Coordinator) run(reqCtx context.Context, gen uint64, cancel context.CancelFunc, call Call) error {
	commit, err := call(reqCtx)

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		cancel()
		c.logger.Debug("request superseded", "coordinator", c.name, "gen", gen)
		return domain.ErrCancelled
	}
	c.cancel = nil
	c.loading = false

	var result error
	switch {
	case isCancellation(err) || (err == nil && reqCtx.Err() != nil):
		result = domain.ErrCancelled
	case err != nil:
		c.errMsg = domain.UserErrorMessage
		c.lastErr = err
		result = err
	default:
		if commit != nil {
			commit()
		}
	}
	cancel()
	c.mu.Unlock()

	if result != nil && !domain.IsCancelled(result) {
		c.logger.Warn("request failed",
			"coordinator", c.name,
			"error", err,
			"code", domain.ErrorCodeOf(err),
			"status", domain.StatusOf(err),
		)
	}
	c.notify()
	return result
}

// Cancel aborts the in-flight request, if any. It is idempotent.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	changed := c.abortLocked()
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// Loading reports whether a request is in flight.
func (c *Coordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Error returns the user-facing error message of the last settled request,
// or "" if it succeeded or none has run.
func (c *Coordinator) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Err returns the underlying error behind Error.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Coordinator) abortLocked() bool {
	if c.cancel == nil {
		return false
	}
	c.cancel()
	c.cancel = nil
	c.gen++
	c.loading = false
	return true
}

func (c *Coordinator) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrCancelled)
}
