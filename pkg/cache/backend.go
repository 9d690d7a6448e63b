package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by New.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Options selects and configures a cache backend.
type Options struct {
	Backend string
	Dir     string // file backend
	Redis   RedisConfig
}

// New opens the backend named by opts.Backend. An empty name means none.
func New(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: directory is required")
		}
		return NewFileCache(opts.Dir)
	case BackendRedis:
		if opts.Redis.Addr == "" {
			return nil, fmt.Errorf("redis cache: address is required")
		}
		return NewRedisCache(ctx, opts.Redis)
	}
	return nil, fmt.Errorf("%w: %q (must be one of: none, file, redis)", ErrUnknownBackend, opts.Backend)
}
