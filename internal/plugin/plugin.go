// Package plugin wires a document session together: it subscribes to the
// runtime's selection and close events, runs detection after the selection
// settles, and reports everything to the host.
package plugin

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mj1618/docbind/internal/bridge"
	"github.com/mj1618/docbind/internal/command"
	"github.com/mj1618/docbind/internal/model"
	"github.com/mj1618/docbind/internal/platform"
	"github.com/mj1618/docbind/internal/selection"
	"go.uber.org/zap"
)

// clickEvents maps detect commands to the event reported on success.
var clickEvents = map[string]string{
	command.DetectLinkClick:             bridge.EventLinkClicked,
	command.DetectTableClick:            bridge.EventTableClicked,
	command.DetectBindingClick:          bridge.EventBindingClicked,
	command.DetectElementClick:          bridge.EventElementClicked,
	command.DetectChartClick:            bridge.EventChartClicked,
	command.DetectPreciseTableCellClick: bridge.EventPreciseTableCellClicked,
}

// activeEvents maps a disambiguated selection to its click event.
var activeEvents = map[model.ActiveKind]string{
	model.ActiveLink:           bridge.EventLinkClicked,
	model.ActiveContentControl: bridge.EventBindingClicked,
	model.ActiveTableCell:      bridge.EventPreciseTableCellClicked,
	model.ActiveChart:          bridge.EventChartClicked,
	model.ActiveShape:          bridge.EventElementClicked,
}

// Ready is the payload of plugin-ready.
type Ready struct {
	SessionID string   `json:"sessionId"`
	Commands  []string `json:"commands"`
}

// Plugin is one document session.
type Plugin struct {
	id         string
	provider   *platform.Provider
	service    *command.Service
	dispatcher *command.Dispatcher
	notifier   *bridge.Notifier
	debouncer  *selection.Debouncer
	logger     *zap.Logger

	mu      sync.Mutex
	cancels []func()
	started bool
	closed  bool
	done    chan struct{}
	// onClose runs after teardown.
	onClose []func()
	// onSelect runs on every selection change, before debouncing.
	onSelect []func()
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithDebounce sets the selection settle delay.
func WithDebounce(d time.Duration) Option {
	return func(p *Plugin) {
		p.debouncer = selection.NewDebouncer(d, p.detect)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Plugin) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) Option {
	return func(p *Plugin) {
		if id != "" {
			p.id = id
		}
	}
}

// OnClose registers fn to run after the session is torn down.
func OnClose(fn func()) Option {
	return func(p *Plugin) { p.onClose = append(p.onClose, fn) }
}

// OnSelectionChange registers fn to run whenever the selection moves.
func OnSelectionChange(fn func()) Option {
	return func(p *Plugin) { p.onSelect = append(p.onSelect, fn) }
}

// New assembles a session. Call Start to begin listening.
func New(provider *platform.Provider, svc *command.Service, d *command.Dispatcher, n *bridge.Notifier, opts ...Option) *Plugin {
	p := &Plugin{
		id:         uuid.NewString(),
		provider:   provider,
		service:    svc,
		dispatcher: d,
		notifier:   n,
		logger:     zap.NewNop(),
		done:       make(chan struct{}),
	}
	p.debouncer = selection.NewDebouncer(selection.DefaultDelay, p.detect)
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(zap.String("session", p.id))
	return p
}

// ID returns the session id.
func (p *Plugin) ID() string { return p.id }

// Done is closed when the session has been torn down.
func (p *Plugin) Done() <-chan struct{} { return p.done }

// Start subscribes to runtime events and announces readiness.
func (p *Plugin) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.closed {
		p.mu.Unlock()
		return
	}
	p.started = true
	if p.provider != nil && p.provider.Selection != nil {
		p.cancels = append(p.cancels, p.provider.Selection.OnSelectionChanged(p.selectionChanged))
	}
	if p.provider != nil && p.provider.Closer != nil {
		p.cancels = append(p.cancels, p.provider.Closer.OnClose(func() {
			// the runtime fires close listeners synchronously
			go p.Close(context.Background())
		}))
	}
	p.mu.Unlock()

	p.logger.Info("session started")
	p.notifier.Notify(ctx, bridge.EventPluginReady, Ready{SessionID: p.id, Commands: p.dispatcher.Commands()})
}

func (p *Plugin) selectionChanged() {
	for _, fn := range p.onSelect {
		fn()
	}
	p.notifier.Notify(context.Background(), bridge.EventSelectionChangedFired, nil)
	p.debouncer.Trigger()
}

// detect runs one disambiguation pass. A pass superseded by a newer
// selection change reports nothing.
func (p *Plugin) detect(ctx context.Context) {
	state, err := p.service.ActiveState(ctx)
	if ctx.Err() != nil {
		p.logger.Debug("detection superseded")
		return
	}
	if err != nil {
		p.logger.Warn("detection failed", zap.Error(err))
		return
	}
	p.notifier.Notify(ctx, bridge.EventActiveElementReport, state)
	if event, ok := activeEvents[state.ActiveKind]; ok {
		p.notifier.Notify(ctx, event, state.Detail)
	}
}

// Dispatch runs a host command, acknowledges it, and reports successful
// click detections as events.
func (p *Plugin) Dispatch(ctx context.Context, req command.Request) command.Response {
	resp := p.dispatcher.Dispatch(ctx, req)
	if event, ok := clickEvents[req.Command]; ok && resp.OK {
		if result, ok := resp.Data.(model.DetectionResult); ok && result.Success {
			p.notifier.Notify(ctx, event, result.Data)
		}
	}
	p.notifier.Notify(ctx, bridge.EventPluginAck, bridge.Ack{Op: req.Command, Data: req.Data})
	return resp
}

// Commands lists the commands the session accepts.
func (p *Plugin) Commands() []string { return p.dispatcher.Commands() }

// Close tears the session down: listeners are removed, pending detection is
// cancelled and the binding store is cleared. Close is idempotent.
func (p *Plugin) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	cancels := p.cancels
	p.cancels = nil
	p.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	p.debouncer.Stop()

	var err error
	if store := p.service.Store(); store != nil {
		if err = store.Close(ctx); err != nil {
			p.logger.Warn("failed to clear binding store", zap.Error(err))
		}
	}
	for _, fn := range p.onClose {
		fn()
	}
	close(p.done)
	p.logger.Info("session closed")
	return err
}
