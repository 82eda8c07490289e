// Package config loads docbind settings. Environment variables prefixed
// DOCBIND_ override the YAML file, which overrides built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. DOCBIND_SCAN_CAP.
const EnvPrefix = "DOCBIND"

// Scanner bounds.
const (
	MinScanCap = 1
	MaxScanCap = 200
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// MCP transports.
const (
	TransportStdio          = "stdio"
	TransportStreamableHTTP = "streamable-http"
	TransportWebsocket      = "websocket"
)

// Config is the full settings tree.
type Config struct {
	Debug     bool            `mapstructure:"debug"`
	Log       LogConfig       `mapstructure:"log"`
	Document  string          `mapstructure:"document"`
	Scan      ScanConfig      `mapstructure:"scan"`
	Selection SelectionConfig `mapstructure:"selection"`
	Binding   BindingConfig   `mapstructure:"binding"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	MCP       MCPConfig       `mapstructure:"mcp"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ScanConfig struct {
	Cap int `mapstructure:"cap"`
}

type SelectionConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

type BindingConfig struct {
	KeyPrefix string `mapstructure:"key_prefix"`
	Markers   bool   `mapstructure:"markers"`
	Backend   string `mapstructure:"backend"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type GatewayConfig struct {
	Addr string `mapstructure:"addr"`
}

type MCPConfig struct {
	Transport string        `mapstructure:"transport"`
	Port      int           `mapstructure:"port"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// Load reads configuration. An empty path searches $HOME and the working
// directory for .docbind.yaml; a missing file there is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".docbind")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in settings.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic("config defaults do not decode: " + err.Error())
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("document", "")
	v.SetDefault("scan.cap", 100)
	v.SetDefault("selection.debounce", 100*time.Millisecond)
	v.SetDefault("binding.key_prefix", "doc_chart_")
	v.SetDefault("binding.markers", true)
	v.SetDefault("binding.backend", BackendMemory)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)
	v.SetDefault("gateway.addr", ":8765")
	v.SetDefault("mcp.transport", TransportStdio)
	v.SetDefault("mcp.port", 8080)
	v.SetDefault("mcp.cache_ttl", 500*time.Millisecond)
}

// Validate rejects settings the runtime cannot honour.
func (c *Config) Validate() error {
	if c.Scan.Cap < MinScanCap || c.Scan.Cap > MaxScanCap {
		return fmt.Errorf("scan.cap must be between %d and %d, got %d", MinScanCap, MaxScanCap, c.Scan.Cap)
	}
	if c.Selection.Debounce < 0 {
		return fmt.Errorf("selection.debounce must not be negative")
	}
	switch c.Binding.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("unsupported binding backend: %s (use memory or redis)", c.Binding.Backend)
	}
	switch c.MCP.Transport {
	case TransportStdio, TransportStreamableHTTP, TransportWebsocket:
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio, streamable-http or websocket)", c.MCP.Transport)
	}
	return nil
}
