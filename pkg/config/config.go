// Package config loads cheertower settings.
//
// Settings resolve in three layers, later ones winning:
//  1. Built-in defaults (embedded defaults.toml)
//  2. The user's config file ($XDG_CONFIG_HOME/cheertower/config.toml)
//  3. CHEERTOWER_* environment variables
//
// Command-line flags are applied on top by the CLI.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cheertower/pkg/cache"
	"github.com/matzehuels/cheertower/pkg/store"
)

//go:embed defaults.toml
var defaultsTOML string

// AppName names the config and cache directories.
const AppName = "cheertower"

// Store backend names.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Log levels accepted in [log] level.
var logLevels = []string{"debug", "info", "warn", "error"}

// Config is the complete application configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	RequestTimeout  Duration `toml:"request_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`

	// Metrics exposes Prometheus metrics on GET /metrics.
	Metrics bool `toml:"metrics"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Backend string            `toml:"backend"` // none, file, redis
	Dir     string            `toml:"dir"`     // file backend; empty means the XDG cache dir
	TTL     Duration          `toml:"ttl"`
	Prefix  string            `toml:"prefix"` // key prefix, see cache.ScopedKeyer
	Redis   cache.RedisConfig `toml:"redis"`
}

// Options converts the section into cache.New options.
func (c CacheConfig) Options() cache.Options {
	dir := c.Dir
	if dir == "" {
		dir = DefaultCacheDir()
	}
	return cache.Options{Backend: c.Backend, Dir: dir, Redis: c.Redis}
}

// StoreConfig selects the routine store backend.
type StoreConfig struct {
	Backend   string            `toml:"backend"` // memory, mongo
	ListLimit int               `toml:"list_limit"`
	Mongo     store.MongoConfig `toml:"mongo"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a wrapper for time.Duration that supports TOML marshaling.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for Duration.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler for Duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// String returns the duration as a string.
func (d Duration) String() string {
	return d.Duration.String()
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	if _, err := toml.Decode(defaultsTOML, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return &cfg
}

// Load resolves defaults, the file at path and the environment.
// An empty path means DefaultPath, which may be absent; an explicit path
// must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := cfg.mergeFile(path); err != nil {
		if !explicit && os.IsNotExist(err) {
			err = nil
		}
		if err != nil {
			return nil, err
		}
	}

	ApplyEnv(cfg, os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile decodes the file at path over cfg. Keys the file does not set
// keep their current values. Unknown keys are an error so typos surface.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks backend names, levels and durations.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case cache.BackendNone, cache.BackendFile, cache.BackendRedis:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q (must be one of: none, file, redis)", c.Cache.Backend)
	}
	if c.Cache.Backend == cache.BackendRedis && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required for the redis backend")
	}

	switch c.Store.Backend {
	case StoreMemory, StoreMongo:
	default:
		return fmt.Errorf("store.backend: unknown backend %q (must be one of: memory, mongo)", c.Store.Backend)
	}
	if c.Store.Backend == StoreMongo && c.Store.Mongo.URI == "" {
		return fmt.Errorf("store.mongo.uri is required for the mongo backend")
	}

	if !contains(logLevels, c.Log.Level) {
		return fmt.Errorf("log.level: unknown level %q (must be one of: %s)", c.Log.Level, strings.Join(logLevels, ", "))
	}
	if c.Cache.TTL.Duration < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	if c.Server.RequestTimeout.Duration <= 0 {
		return fmt.Errorf("server.request_timeout must be positive")
	}
	return nil
}

// DefaultPath returns the config file location using the XDG standard
// (~/.config/cheertower/config.toml).
func DefaultPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "config.toml")
}

// DefaultCacheDir returns the cache directory using the XDG standard
// (~/.cache/cheertower/).
func DefaultCacheDir() string {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

func xdgDir(env, fallback string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), AppName)
	}
	return filepath.Join(home, fallback, AppName)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
