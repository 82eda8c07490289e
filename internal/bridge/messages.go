// Package bridge carries commands in from the host page and notifications
// back out.
package bridge

import (
	"time"

	"github.com/google/uuid"
)

// Notification events sent to the host.
const (
	EventPluginReady             = "plugin-ready"
	EventSelectionChangedFired   = "selection-changed-fired"
	EventActiveElementReport     = "active-element-report"
	EventLinkClicked             = "link-clicked"
	EventTableClicked            = "table-clicked"
	EventBindingClicked          = "binding-clicked"
	EventElementClicked          = "element-clicked"
	EventChartClicked            = "chart-clicked"
	EventPreciseTableCellClicked = "precise-table-cell-clicked"
	EventPluginAck               = "plugin-ack"
)

// Envelope types on the wire.
const (
	TypeResponse     = "response"
	TypeNotification = "notification"
)

// Notification is an asynchronous message to the host.
type Notification struct {
	Type  string    `json:"type"`
	ID    string    `json:"id"`
	Event string    `json:"event"`
	Data  any       `json:"data,omitempty"`
	At    time.Time `json:"at"`
}

// NewNotification stamps an event with a fresh id.
func NewNotification(event string, data any, at time.Time) Notification {
	return Notification{
		Type:  TypeNotification,
		ID:    uuid.NewString(),
		Event: event,
		Data:  data,
		At:    at,
	}
}

// Ack is the payload of a plugin-ack notification.
type Ack struct {
	Op   string `json:"op"`
	Data any    `json:"data,omitempty"`
}

// inbound is a command received over the websocket. ID is echoed in the
// response so the host can correlate replies.
type inbound struct {
	ID      string `json:"id,omitempty"`
	Command string `json:"command"`
	Data    any    `json:"data,omitempty"`
}

type outbound struct {
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}
