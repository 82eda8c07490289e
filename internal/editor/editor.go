// Package editor turns sandbox calls into one-shot futures.
package editor

import (
	"context"
	"errors"
	"sync"

	"github.com/mj1618/docbind/internal/platform"
	"go.uber.org/zap"
)

// ErrNoSandbox is returned when the editor has no runtime to call into.
var ErrNoSandbox = errors.New("no document sandbox")

// Future is the single result of one sandbox call.
type Future struct {
	done chan struct{}
	once sync.Once
	val  any
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// resolve records the result. Only the first call has an effect.
func (f *Future) resolve(v any, err error) {
	f.once.Do(func() {
		f.val, f.err = v, err
		close(f.done)
	})
}

// Done is closed once the result is available.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the sandbox delivers a result or ctx is done. The sandbox
// call itself keeps running when ctx ends first.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Editor serializes parameter delivery into the sandbox.
type Editor struct {
	sandbox platform.Sandbox
	async   bool
	logger  *zap.Logger

	// mu guards the fill-then-call sequence on the shared scope.
	mu    sync.Mutex
	scope *platform.Scope
}

// Option configures an Editor.
type Option func(*Editor)

// WithAsync asks the runtime to deliver results from its own context.
func WithAsync(async bool) Option {
	return func(e *Editor) { e.async = async }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Editor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New returns an Editor over sandbox.
func New(sandbox platform.Sandbox, opts ...Option) *Editor {
	e := &Editor{
		sandbox: sandbox,
		async:   true,
		logger:  zap.NewNop(),
		scope:   platform.NewScope(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run fills the shared scope with params and hands fn to the sandbox. The
// returned future resolves exactly once. Nothing here enforces a timeout: a
// host that never calls back leaves the future pending.
func (e *Editor) Run(ctx context.Context, params map[string]any, fn platform.DocFunc) *Future {
	f := newFuture()
	if e == nil || e.sandbox == nil {
		f.resolve(nil, ErrNoSandbox)
		return f
	}
	if err := ctx.Err(); err != nil {
		f.resolve(nil, err)
		return f
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.scope.Set(params)
	// Each call reads its own copy so a later fill cannot change the
	// parameters of a call that is still queued.
	scope := platform.NewScope()
	scope.Set(params)

	e.sandbox.CallCommand(func(doc platform.Document, _ *platform.Scope) (v any, err error) {
		defer func() {
			if p := recover(); p != nil {
				e.logger.Warn("sandbox function panicked", zap.Any("panic", p))
				err = &PanicError{Value: p}
			}
		}()
		return fn(doc, scope)
	}, platform.CallOptions{Async: e.async, Scope: scope}, f.resolve)
	return f
}

// Call runs fn and waits for its result.
func (e *Editor) Call(ctx context.Context, params map[string]any, fn platform.DocFunc) (any, error) {
	return e.Run(ctx, params, fn).Wait(ctx)
}

// Scope returns the shared scope as last filled.
func (e *Editor) Scope() *platform.Scope { return e.scope }

// PanicError wraps a panic raised inside a sandbox function.
type PanicError struct {
	Value any
}

func (p *PanicError) Error() string {
	if err, ok := p.Value.(error); ok {
		return "sandbox function panicked: " + err.Error()
	}
	return "sandbox function panicked"
}

func (p *PanicError) Unwrap() error {
	err, _ := p.Value.(error)
	return err
}
