package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/mj1618/docbind/internal/command"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"
)

// maxCommandBody bounds POST /commands payloads.
const maxCommandBody = 1 << 20

// Dispatcher executes host commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, req command.Request) command.Response
}

// Lister is optionally implemented by dispatchers that can name their
// commands.
type Lister interface {
	Commands() []string
}

type client struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return websocket.JSON.Send(c.conn, v)
}

// Gateway is the host-facing endpoint: a websocket for commands and
// notifications plus a small HTTP API.
type Gateway struct {
	dispatcher Dispatcher
	logger     *zap.Logger

	mu      sync.RWMutex
	clients map[string]*client
}

// NewGateway returns a gateway dispatching to d.
func NewGateway(d Dispatcher, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{dispatcher: d, logger: logger, clients: make(map[string]*client)}
}

// Handler returns the gateway routes.
func (g *Gateway) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "clients": g.Clients()})
	})
	r.Get("/commands", g.handleList)
	r.Post("/commands", g.handleCommand)
	r.Handle("/ws", websocket.Server{Handler: g.serveConn})
	return r
}

// Clients returns how many hosts are connected.
func (g *Gateway) Clients() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.clients)
}

// Send implements Transport by broadcasting to every connected host.
func (g *Gateway) Send(_ context.Context, n Notification) error {
	g.mu.RLock()
	clients := make([]*client, 0, len(g.clients))
	for _, c := range g.clients {
		clients = append(clients, c)
	}
	g.mu.RUnlock()
	if len(clients) == 0 {
		return ErrNoTransport
	}

	var errs []error
	for _, c := range clients {
		if err := c.send(n); err != nil {
			errs = append(errs, err)
			g.drop(c)
		}
	}
	if len(errs) == len(clients) {
		return errors.Join(errs...)
	}
	return nil
}

func (g *Gateway) serveConn(conn *websocket.Conn) {
	c := &client{id: uuid.NewString(), conn: conn}
	g.mu.Lock()
	g.clients[c.id] = c
	g.mu.Unlock()
	defer g.drop(c)

	logger := g.logger.With(zap.String("client", c.id))
	logger.Info("host connected")
	ctx := conn.Request().Context()

	for {
		var msg inbound
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info("host disconnected")
			} else {
				logger.Warn("failed to read host message", zap.Error(err))
			}
			return
		}
		resp := g.dispatcher.Dispatch(ctx, command.Request{Command: msg.Command, Data: msg.Data})
		out := outbound{Type: TypeResponse, ID: msg.ID, OK: resp.OK, Data: resp.Data, Error: resp.Error}
		if err := c.send(out); err != nil {
			logger.Warn("failed to send response", zap.String("command", msg.Command), zap.Error(err))
			return
		}
	}
}

func (g *Gateway) drop(c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.clients[c.id]; ok {
		delete(g.clients, c.id)
		_ = c.conn.Close()
	}
}

func (g *Gateway) handleList(w http.ResponseWriter, _ *http.Request) {
	lister, ok := g.dispatcher.(Lister)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"commands": []string{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"commands": lister.Commands()})
}

func (g *Gateway) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req command.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxCommandBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, command.Response{OK: false, Error: "invalid request: " + err.Error()})
		return
	}
	if req.Command == "" {
		writeJSON(w, http.StatusBadRequest, command.Response{OK: false, Error: "command is required"})
		return
	}
	resp := g.dispatcher.Dispatch(r.Context(), req)
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
