// Package command is the host command bus: named handlers that turn host
// requests into document operations and report {ok, data, error}.
package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// UnknownCommand is the error text returned for unregistered commands.
const UnknownCommand = "Unknown command"

// ErrUnknownCommand is returned by Lookup for unregistered commands.
var ErrUnknownCommand = errors.New("unknown command")

// Request is one inbound host message.
type Request struct {
	Command string `json:"command" yaml:"command"`
	Data    any    `json:"data,omitempty" yaml:"data,omitempty"`
}

// Response is the synchronous reply to a Request.
type Response struct {
	OK    bool   `json:"ok" yaml:"ok"`
	Data  any    `json:"data,omitempty" yaml:"data,omitempty"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Handler executes one command. data is the request payload as decoded from
// the transport: usually a map[string]any, sometimes a bare string.
type Handler func(ctx context.Context, data any) (any, error)

// Dispatcher routes requests to registered handlers.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   *zap.Logger
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{handlers: make(map[string]Handler), logger: logger}
}

// Register adds or replaces the handler for name.
func (d *Dispatcher) Register(name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = h
}

// Lookup returns the handler for name.
func (d *Dispatcher) Lookup(name string) (Handler, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return h, nil
}

// Commands lists registered command names in sorted order.
func (d *Dispatcher) Commands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the handler for req. Handler errors and panics become
// {ok:false}; nothing is returned as a Go error.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (resp Response) {
	h, err := d.Lookup(req.Command)
	if err != nil {
		d.logger.Warn("unknown command", zap.String("command", req.Command))
		return Response{OK: false, Error: UnknownCommand}
	}

	defer func() {
		if p := recover(); p != nil {
			d.logger.Error("command panicked", zap.String("command", req.Command), zap.Any("panic", p))
			resp = Response{OK: false, Error: fmt.Sprintf("%s: %v", req.Command, p)}
		}
	}()

	data, err := h(ctx, req.Data)
	if err != nil {
		d.logger.Debug("command failed", zap.String("command", req.Command), zap.Error(err))
		return Response{OK: false, Error: err.Error()}
	}
	d.logger.Debug("command done", zap.String("command", req.Command))
	return Response{OK: true, Data: data}
}
