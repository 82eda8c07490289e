package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mj1618/docbind/internal/binding"
	"github.com/mj1618/docbind/internal/bridge"
	"github.com/mj1618/docbind/internal/command"
	"github.com/mj1618/docbind/internal/config"
	"github.com/mj1618/docbind/internal/detect"
	"github.com/mj1618/docbind/internal/editor"
	"github.com/mj1618/docbind/internal/platform"
	"github.com/mj1618/docbind/internal/platform/memdoc"
	"github.com/mj1618/docbind/internal/plugin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// session is one open document with its command bus.
type session struct {
	id       string
	plugin   *plugin.Plugin
	provider *platform.Provider
	// doc is set when the runtime is the in-memory one.
	doc     *memdoc.Document
	closers []func()
}

// sessionOptions carries the host-side wiring of a session.
type sessionOptions struct {
	transport bridge.Transport
	plugin    []plugin.Option
}

// openSession loads the configured document and assembles the detection,
// binding and command layers over it.
func openSession(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts sessionOptions) (*session, error) {
	provider, err := platform.NewProvider(platform.ProviderConfig{DocumentPath: cfg.Document})
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	s := &session{id: uuid.NewString(), provider: provider}
	s.doc, _ = provider.Selection.(*memdoc.Document)
	if c, ok := provider.Sandbox.(interface{ Close() }); ok {
		s.closers = append(s.closers, c.Close)
	}

	backend, err := s.bindingBackend(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	store := binding.NewStore(
		binding.WithBackend(backend),
		binding.WithKeyPrefix(cfg.Binding.KeyPrefix),
		binding.WithMarkers(cfg.Binding.Markers),
		binding.WithLogger(logger.Named("binding")),
	)

	ids := detect.NewIDSynthesizer(nil)
	classifier := detect.NewClassifier(detect.NewChartIdentifier(logger.Named("chart")), logger.Named("classify"))
	scanner := detect.NewScanner(classifier, logger.Named("scan"), detect.WithScanCap(cfg.Scan.Cap), detect.WithIDSynthesizer(ids))
	dis := detect.NewDisambiguator(scanner, store, ids, logger.Named("detect"))

	ed := editor.New(provider.Sandbox, editor.WithLogger(logger.Named("editor")))
	svc := command.NewService(ed, dis, store, command.WithLogger(logger.Named("command")))
	d := command.NewDispatcher(logger.Named("bus"))
	svc.Register(d)

	popts := []plugin.Option{
		plugin.WithSessionID(s.id),
		plugin.WithDebounce(cfg.Selection.Debounce),
		plugin.WithLogger(logger.Named("plugin")),
	}
	popts = append(popts, opts.plugin...)
	s.plugin = plugin.New(provider, svc, d, bridge.NewNotifier(opts.transport, logger.Named("notify")), popts...)
	return s, nil
}

func (s *session) bindingBackend(ctx context.Context, cfg *config.Config) (binding.Backend, error) {
	if cfg.Binding.Backend != config.BackendRedis {
		return binding.NewMemoryBackend(), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	s.closers = append(s.closers, func() { _ = client.Close() })
	return binding.NewRedisBackend(client, s.id, cfg.Redis.TTL), nil
}

// Dispatch implements the gateway and MCP session surfaces.
func (s *session) Dispatch(ctx context.Context, req command.Request) command.Response {
	return s.plugin.Dispatch(ctx, req)
}

// Commands lists the accepted commands.
func (s *session) Commands() []string { return s.plugin.Commands() }

// Close tears the plugin down, then releases the runtime and backends.
func (s *session) Close() {
	if s.plugin != nil {
		_ = s.plugin.Close(context.Background())
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
