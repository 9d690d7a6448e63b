// Package cache stores rendered routine artifacts.
//
// Composing a routine is cheap but not free: the server renders the same
// handful of popular requests (12 athletes, 2 minutes, all sections) over
// and over. The cache keys each rendered artifact by a hash of its
// normalized request and output format.
//
// # Backends
//
//   - [NullCache]: never stores anything (--no-cache, tests)
//   - [FileCache]: one JSON file per entry under the XDG cache directory (CLI)
//   - [RedisCache]: shared cache for multiple server instances
//
// # Keys
//
// A [Keyer] turns request options into keys. [ScopedKeyer] prefixes every
// key, which lets several deployments share one Redis without colliding.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DefaultTTL is the lifetime of cached artifacts when none is configured.
const DefaultTTL = 24 * time.Hour

// Key type names, used as key prefixes and as observability labels.
const (
	KeyTypeRoutine   = "routine"
	KeyTypeFormation = "formation"
)

// RoutineKeyOpts identifies a rendered routine artifact.
type RoutineKeyOpts struct {
	Level    string   `json:"level"`
	TeamSize int      `json:"team_size"`
	Length   int      `json:"length"`
	Focus    string   `json:"focus"`
	Sections []string `json:"sections"`
	Format   string   `json:"format"`
}

// FormationKeyOpts identifies a rendered formation diagram.
type FormationKeyOpts struct {
	Category string `json:"category"`
	TeamSize int    `json:"team_size"`
}

// Keyer builds cache keys.
type Keyer interface {
	RoutineKey(opts RoutineKeyOpts) string
	FormationKey(opts FormationKeyOpts) string
}

// DefaultKeyer builds unprefixed keys of the form "<type>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RoutineKey generates a key for a rendered routine.
func (DefaultKeyer) RoutineKey(opts RoutineKeyOpts) string {
	return hashKey(KeyTypeRoutine, opts)
}

// FormationKey generates a key for a rendered formation diagram.
func (DefaultKeyer) FormationKey(opts FormationKeyOpts) string {
	return hashKey(KeyTypeFormation, opts)
}
