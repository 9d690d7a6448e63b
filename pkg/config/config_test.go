package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func mapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.RequestTimeout.Duration != 15*time.Second {
		t.Errorf("Server.RequestTimeout = %v", cfg.Server.RequestTimeout)
	}
	if cfg.Cache.Backend != "file" || cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Store.Backend != StoreMemory || cfg.Store.Mongo.Collection != "routines" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[server]
addr = ":9000"

[cache]
backend = "redis"
ttl = "10m"

[cache.redis]
addr = "localhost:6379"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.TTL.Duration != 10*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	// Unset keys keep their defaults.
	if cfg.Server.ReadTimeout.Duration != 10*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want default", cfg.Server.ReadTimeout)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "bad syntax", content: "[server\n", wantErr: "parsing"},
		{name: "unknown key", content: "[server]\nport = 1\n", wantErr: "unknown keys: server.port"},
		{name: "bad duration", content: "[cache]\nttl = \"soon\"\n", wantErr: "parsing"},
		{name: "bad backend", content: "[cache]\nbackend = \"memcached\"\n", wantErr: "cache.backend"},
		{name: "redis without addr", content: "[cache]\nbackend = \"redis\"\n", wantErr: "cache.redis.addr"},
		{name: "mongo without uri", content: "[store]\nbackend = \"mongo\"\n", wantErr: "store.mongo.uri"},
		{name: "bad level", content: "[log]\nlevel = \"loud\"\n", wantErr: "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".toml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("explicit missing path should fail")
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if _, err := Load(""); err != nil {
		t.Errorf("missing default path should fall back to defaults: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	ApplyEnv(cfg, mapLookup(map[string]string{
		"CHEERTOWER_ADDR":             "127.0.0.1:3000",
		"CHEERTOWER_CACHE":            "redis",
		"CHEERTOWER_CACHE_TTL":        "5m",
		"CHEERTOWER_REDIS_ADDR":       "redis:6379",
		"CHEERTOWER_REDIS_DB":         "2",
		"CHEERTOWER_MONGO_URI":        "mongodb://mongo:27017",
		"CHEERTOWER_LOG_LEVEL":        " debug ",
		"CHEERTOWER_METRICS":          "true",
		"CHEERTOWER_REQUEST_TIMEOUT":  "later", // ignored
		"CHEERTOWER_STORE_LIST_LIMIT": "-4",    // ignored
	}))

	if cfg.Server.Addr != "127.0.0.1:3000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.TTL.Duration != 5*time.Minute {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.Redis.Addr != "redis:6379" || cfg.Cache.Redis.DB != 2 {
		t.Errorf("Cache.Redis = %+v", cfg.Cache.Redis)
	}
	if cfg.Store.Mongo.URI != "mongodb://mongo:27017" {
		t.Errorf("Store.Mongo.URI = %q", cfg.Store.Mongo.URI)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if !cfg.Server.Metrics {
		t.Error("Server.Metrics not applied")
	}
	if cfg.Server.RequestTimeout.Duration != 15*time.Second {
		t.Errorf("malformed duration applied: %v", cfg.Server.RequestTimeout)
	}
	if cfg.Store.ListLimit != 50 {
		t.Errorf("negative list limit applied: %d", cfg.Store.ListLimit)
	}
}

func TestApplyEnvMalformedBool(t *testing.T) {
	cfg := Default()
	cfg.Server.Metrics = true
	ApplyEnv(cfg, mapLookup(map[string]string{"CHEERTOWER_METRICS": "sometimes"}))
	if !cfg.Server.Metrics {
		t.Error("malformed boolean should keep the current value")
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_CACHE_HOME", "/xdg/cache")

	if got, want := DefaultPath(), filepath.Join("/xdg/config", AppName, "config.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
	if got, want := DefaultCacheDir(), filepath.Join("/xdg/cache", AppName); got != want {
		t.Errorf("DefaultCacheDir() = %q, want %q", got, want)
	}

	cfg := Default()
	if got := cfg.Cache.Options().Dir; got != filepath.Join("/xdg/cache", AppName) {
		t.Errorf("Cache.Options().Dir = %q", got)
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatal(err)
	}
	if d.Duration != 90*time.Second {
		t.Errorf("Duration = %v", d.Duration)
	}
	text, _ := d.MarshalText()
	if string(text) != "1m30s" {
		t.Errorf("MarshalText = %q", text)
	}
}
