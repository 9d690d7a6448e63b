// Package pipeline provides the routine pipeline shared by the CLI and the
// HTTP server.
//
// This package implements the compose → render → cache (→ store) flow so
// both entry points validate, cache and persist routines the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Compose: normalize and validate the request, build the routine sheet
//  2. Render: produce the requested output format
//  3. Persist (optional): assign an ID and save the routine to the store
//
// Rendered artifacts are cached by a hash of the normalized request and
// format. Saved routines bypass the artifact cache because their output
// carries a fresh ID.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, st, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Request: routine.Request{Level: "Beginner", TeamSize: 12, LengthMinutes: 2, Focus: "Stunts"},
//	    Format:  render.FormatText,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.Write(result.Artifact)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cheertower/pkg/cache"
	"github.com/matzehuels/cheertower/pkg/render"
	"github.com/matzehuels/cheertower/pkg/routine"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

// DefaultFormat is the output format when none is requested.
const DefaultFormat = render.FormatText

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	Request routine.Request `json:"request"`
	Format  string          `json:"format,omitempty"`

	// Refresh skips the cache read but still writes the fresh artifact.
	Refresh bool `json:"refresh,omitempty"`

	// Save assigns an ID and stores the routine.
	Save bool `json:"save,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Routine is the composed routine. ID is set only when it was saved.
	Routine *routine.Routine

	// Artifact is the routine rendered in Format.
	Artifact []byte
	Format   string

	// Saved reports whether the routine was written to the store.
	Saved bool

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks whether the artifact came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ComposeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether routine and artifact came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults normalizes the request, applies the default format
// and validates both. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if err := render.ValidateFormat(o.Format); err != nil {
		return err
	}
	o.Request = routine.Normalize(o.Request)
	if err := routine.Validate(o.Request); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// RoutineKeyOpts returns cache key options for the rendered routine.
// Call after ValidateAndSetDefaults so equivalent requests share a key.
func (o *Options) RoutineKeyOpts() cache.RoutineKeyOpts {
	return cache.RoutineKeyOpts{
		Level:    o.Request.Level,
		TeamSize: o.Request.TeamSize,
		Length:   o.Request.LengthMinutes,
		Focus:    o.Request.Focus,
		Sections: o.Request.Sections,
		Format:   o.Format,
	}
}
