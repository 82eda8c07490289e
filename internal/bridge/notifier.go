package bridge

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ErrNoTransport means no host is connected to receive a notification.
var ErrNoTransport = errors.New("no host transport connected")

// Transport delivers notifications to the host.
type Transport interface {
	Send(ctx context.Context, n Notification) error
}

// Notifier sends events to the host. Delivery is best effort: a missing or
// failing transport is logged and never reported to the caller.
type Notifier struct {
	transport Transport
	now       func() time.Time
	logger    *zap.Logger
}

// NewNotifier returns a notifier over transport, which may be nil.
func NewNotifier(transport Transport, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{transport: transport, now: time.Now, logger: logger}
}

// Notify emits event with data.
func (n *Notifier) Notify(ctx context.Context, event string, data any) {
	if n == nil {
		return
	}
	if n.transport == nil {
		n.logger.Debug("notification dropped, no transport", zap.String("event", event))
		return
	}
	msg := NewNotification(event, data, n.now())
	err := n.transport.Send(ctx, msg)
	switch {
	case err == nil:
		n.logger.Debug("notification sent", zap.String("event", event), zap.String("id", msg.ID))
	case errors.Is(err, ErrNoTransport):
		n.logger.Debug("notification dropped, no host connected", zap.String("event", event))
	default:
		n.logger.Warn("failed to send notification", zap.String("event", event), zap.Error(err))
	}
}

// Fanout sends each notification to every transport.
type Fanout []Transport

// Send implements Transport. It succeeds when any transport accepted the
// message.
func (f Fanout) Send(ctx context.Context, n Notification) error {
	var errs []error
	delivered := false
	for _, t := range f {
		if t == nil {
			continue
		}
		if err := t.Send(ctx, n); err != nil {
			errs = append(errs, err)
			continue
		}
		delivered = true
	}
	if delivered {
		return nil
	}
	if len(errs) == 0 {
		return ErrNoTransport
	}
	return errors.Join(errs...)
}

// Recorder keeps notifications in memory. The CLI uses it to print what a
// session emitted.
type Recorder struct {
	ch chan Notification
}

// NewRecorder buffers up to size notifications; older ones are kept and
// newer ones dropped once full.
func NewRecorder(size int) *Recorder {
	return &Recorder{ch: make(chan Notification, size)}
}

// Send implements Transport.
func (r *Recorder) Send(_ context.Context, n Notification) error {
	select {
	case r.ch <- n:
		return nil
	default:
		return errors.New("notification buffer full")
	}
}

// C exposes recorded notifications in order.
func (r *Recorder) C() <-chan Notification { return r.ch }

// Drain returns everything recorded so far.
func (r *Recorder) Drain() []Notification {
	var out []Notification
	for {
		select {
		case n := <-r.ch:
			out = append(out, n)
		default:
			return out
		}
	}
}
