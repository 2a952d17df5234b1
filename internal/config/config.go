// Package config loads the service configuration: built-in defaults, then an
// optional YAML file, then environment variables.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Backend names.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendSupabase = "supabase"
)

// DefaultPath is read when no file is given and it exists.
const DefaultPath = "mentorai.yaml"

// Config is the full service configuration.
type Config struct {
	Addr    string `yaml:"addr" env:"MENTORAI_ADDR"`
	Backend string `yaml:"backend" env:"MENTORAI_BACKEND"`
	Cookie  string `yaml:"session_cookie" env:"MENTORAI_SESSION_COOKIE"`
	Metrics bool   `yaml:"metrics" env:"MENTORAI_METRICS"`

	SQLite   SQLite   `yaml:"sqlite" envPrefix:"MENTORAI_SQLITE_"`
	Supabase Supabase `yaml:"supabase" envPrefix:"SUPABASE_"`
	Redis    Redis    `yaml:"redis" envPrefix:"MENTORAI_REDIS_"`
	Drafts   Drafts   `yaml:"drafts" envPrefix:"MENTORAI_DRAFTS_"`
	Log      Log      `yaml:"log" envPrefix:"MENTORAI_LOG_"`
	MCP      MCP      `yaml:"mcp" envPrefix:"MENTORAI_MCP_"`
}

// SQLite configures the local backend.
type SQLite struct {
	Path string `yaml:"path" env:"PATH"`
}

// Supabase configures the hosted backend. With JWTSecret set, access tokens
// are verified locally instead of by the auth service.
type Supabase struct {
	URL        string `yaml:"url" env:"URL"`
	AnonKey    string `yaml:"anon_key" env:"ANON_KEY"`
	ServiceKey string `yaml:"service_key" env:"SERVICE_ROLE_KEY"`
	JWTSecret  string `yaml:"jwt_secret" env:"JWT_SECRET"`
}

// Redis configures the workspace store. An empty Addr keeps drafts in memory.
type Redis struct {
	Addr     string        `yaml:"addr" env:"ADDR"`
	Password string        `yaml:"password" env:"PASSWORD"`
	DB       int           `yaml:"db" env:"DB"`
	Prefix   string        `yaml:"prefix" env:"PREFIX"`
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
}

// Drafts configures encryption of workspace drafts at rest. Keys are base64
// encoded 32-byte values; an empty EncryptionKey stores drafts as plain JSON.
type Drafts struct {
	EncryptionKey string   `yaml:"encryption_key" env:"ENCRYPTION_KEY"`
	FallbackKeys  []string `yaml:"fallback_keys" env:"FALLBACK_KEYS"`
}

// Keys decodes the configured keys. active is nil when encryption is off.
func (d Drafts) Keys() (active []byte, fallback [][]byte, err error) {
	if d.EncryptionKey == "" {
		return nil, nil, nil
	}
	if active, err = decodeKey("drafts.encryption_key", d.EncryptionKey); err != nil {
		return nil, nil, err
	}
	for i, k := range d.FallbackKeys {
		b, err := decodeKey(fmt.Sprintf("drafts.fallback_keys[%d]", i), k)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, b)
	}
	return active, fallback, nil
}

func decodeKey(name, s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("config: %s is not base64: %w", name, err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("config: %s must decode to 32 bytes, got %d", name, len(b))
	}
	return b, nil
}

// Log configures the logger.
type Log struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// MCP configures the assistant tool server.
type MCP struct {
	Transport string `yaml:"transport" env:"TRANSPORT"`
	Addr      string `yaml:"addr" env:"ADDR"`
	BaseURL   string `yaml:"base_url" env:"BASE_URL"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Addr:    ":8080",
		Backend: BackendMemory,
		Cookie:  "sb-access-token",
		Metrics: true,
		SQLite:  SQLite{Path: "mentorai.db"},
		Redis:   Redis{Prefix: "mentorai:", TTL: 24 * time.Hour},
		Log:     Log{Level: "info", Format: "text"},
		MCP:     MCP{Transport: "stdio", Addr: ":8081"},
	}
}

// Load builds the configuration. path may be empty, in which case DefaultPath
// is used if present.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	return cfg, cfg.Validate()
}

// Validate reports the first inconsistent setting.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return errors.New("config: sqlite.path is required for the sqlite backend")
		}
	case BackendSupabase:
		if c.Supabase.URL == "" || c.Supabase.AnonKey == "" {
			return errors.New("config: supabase.url and supabase.anon_key are required for the supabase backend")
		}
	default:
		return fmt.Errorf("config: unknown backend %q (want memory, sqlite or supabase)", c.Backend)
	}
	if _, _, err := c.Drafts.Keys(); err != nil {
		return err
	}
	if c.Redis.TTL < 0 {
		return errors.New("config: redis.ttl must not be negative")
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("config: unknown mcp.transport %q (want stdio or sse)", c.MCP.Transport)
	}
	return nil
}
