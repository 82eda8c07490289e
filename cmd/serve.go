package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/mj1618/docbind/internal/bridge"
	"github.com/mj1618/docbind/internal/command"
	"github.com/mj1618/docbind/internal/config"
	"github.com/mj1618/docbind/internal/plugin"
	"github.com/mj1618/docbind/internal/server"
	"github.com/mj1618/docbind/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the document session to a host or MCP client",
	Long: `Serve one document session.

Supported transports:
  stdio             MCP over standard I/O (default)
  streamable-http   MCP over streamable HTTP (for remote agents)
  websocket         Host gateway: commands and notifications over /ws,
                    plus GET /healthz, GET /commands and POST /commands

Examples:
  docbind serve
  docbind serve --transport streamable-http --port 8080
  docbind serve --transport websocket --addr :8765 --document report.yaml`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "", "Transport: stdio, streamable-http, websocket (default from config)")
	serveCmd.Flags().Int("port", 0, "HTTP port for streamable-http transport (default from config)")
	serveCmd.Flags().Int("cache-ttl", -1, "Read-only response cache TTL in milliseconds, 0 to disable (default from config)")
	serveCmd.Flags().String("addr", "", "Listen address for the websocket gateway (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := *appConfig
	if v, _ := cmd.Flags().GetString("transport"); v != "" {
		cfg.MCP.Transport = v
	}
	if v, _ := cmd.Flags().GetInt("port"); v > 0 {
		cfg.MCP.Port = v
	}
	if v, _ := cmd.Flags().GetInt("cache-ttl"); v >= 0 {
		cfg.MCP.CacheTTL = time.Duration(v) * time.Millisecond
	}
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Gateway.Addr = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.MCP.Transport == config.TransportWebsocket {
		return serveGateway(cmd.Context(), &cfg, appLogger)
	}
	return serveMCP(cmd.Context(), &cfg, appLogger)
}

// serveMCP exposes the command bus as MCP tools. The response cache is
// dropped whenever the selection moves.
func serveMCP(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var current atomic.Pointer[server.Server]
	sess, err := openSession(ctx, cfg, logger, sessionOptions{
		plugin: []plugin.Option{plugin.OnSelectionChange(func() {
			if srv := current.Load(); srv != nil {
				srv.Invalidate()
			}
		})},
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	scfg := server.Config{
		Name:      "docbind",
		Version:   version.Version,
		Transport: cfg.MCP.Transport,
		Port:      cfg.MCP.Port,
		CacheTTL:  cfg.MCP.CacheTTL,
	}
	srv := server.New(sess, scfg, logger.Named("mcp"))
	current.Store(srv)
	sess.plugin.Start(ctx)
	logger.Info("serving MCP", zap.String("transport", scfg.Transport), zap.String("session", sess.id))
	if err := srv.Serve(scfg); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// gatewaySession lets the gateway exist before the session it serves.
type gatewaySession struct{ sess *session }

func (g *gatewaySession) Dispatch(ctx context.Context, req command.Request) command.Response {
	return g.sess.Dispatch(ctx, req)
}

func (g *gatewaySession) Commands() []string { return g.sess.Commands() }

// serveGateway runs the host websocket gateway until ctx ends or the
// document closes.
func serveGateway(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	ref := &gatewaySession{}
	gw := bridge.NewGateway(ref, logger.Named("gateway"))

	sess, err := openSession(ctx, cfg, logger, sessionOptions{transport: gw})
	if err != nil {
		return err
	}
	defer sess.Close()
	ref.sess = sess

	httpServer := &http.Server{
		Addr:              cfg.Gateway.Addr,
		Handler:           gw.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	sess.plugin.Start(ctx)
	logger.Info("serving host gateway", zap.String("addr", cfg.Gateway.Addr), zap.String("session", sess.id))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("gateway: %w", err)
	case <-ctx.Done():
	case <-sess.plugin.Done():
		logger.Info("document closed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
