package config

import (
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CHEERTOWER_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg from CHEERTOWER_* variables read through lookup.
// Malformed numbers, booleans and durations are ignored and the current value kept.
func ApplyEnv(cfg *Config, lookup LookupFunc) {
	e := env{lookup: lookup}

	e.str("ADDR", &cfg.Server.Addr)
	e.duration("READ_TIMEOUT", &cfg.Server.ReadTimeout)
	e.duration("WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	e.duration("REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)
	e.duration("SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	e.boolean("METRICS", &cfg.Server.Metrics)

	e.str("CACHE", &cfg.Cache.Backend)
	e.str("CACHE_DIR", &cfg.Cache.Dir)
	e.duration("CACHE_TTL", &cfg.Cache.TTL)
	e.str("CACHE_PREFIX", &cfg.Cache.Prefix)
	e.str("REDIS_ADDR", &cfg.Cache.Redis.Addr)
	e.str("REDIS_PASSWORD", &cfg.Cache.Redis.Password)
	e.integer("REDIS_DB", &cfg.Cache.Redis.DB)

	e.str("STORE", &cfg.Store.Backend)
	e.integer("STORE_LIST_LIMIT", &cfg.Store.ListLimit)
	e.str("MONGO_URI", &cfg.Store.Mongo.URI)
	e.str("MONGO_DATABASE", &cfg.Store.Mongo.Database)
	e.str("MONGO_COLLECTION", &cfg.Store.Mongo.Collection)

	e.str("LOG_LEVEL", &cfg.Log.Level)
}

type env struct {
	lookup LookupFunc
}

func (e env) get(key string) (string, bool) {
	if e.lookup == nil {
		return "", false
	}
	raw, ok := e.lookup(EnvPrefix + key)
	raw = strings.TrimSpace(raw)
	return raw, ok && raw != ""
}

func (e env) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e env) integer(key string, dst *int) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		*dst = n
	}
}

func (e env) boolean(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}

func (e env) duration(key string, dst *Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		dst.Duration = d
	}
}
