package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/cheertower/pkg/cache"
	"github.com/matzehuels/cheertower/pkg/errors"
	"github.com/matzehuels/cheertower/pkg/formation"
	"github.com/matzehuels/cheertower/pkg/observability"
	"github.com/matzehuels/cheertower/pkg/render"
	"github.com/matzehuels/cheertower/pkg/routine"
	"github.com/matzehuels/cheertower/pkg/store"
)

// Runner encapsulates pipeline execution with caching and persistence.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner holds no per-request state. Multiple goroutines can safely
// use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store
	Logger *log.Logger

	// TTL is the lifetime of cached entries.
	TTL time.Duration

	now   func() time.Time
	newID func() string
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If st is nil, routines are kept in memory.
func NewRunner(c cache.Cache, keyer cache.Keyer, st store.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if st == nil {
		st = store.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  st,
		Logger: logger,
		TTL:    cache.DefaultTTL,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// cachedRoutine is the cache entry for a rendered routine.
type cachedRoutine struct {
	Routine  *routine.Routine `json:"routine"`
	Artifact []byte           `json:"artifact"`
}

// Execute runs compose → render with caching, saving the routine first
// when opts.Save is set.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.Save {
		return r.executeAndSave(ctx, opts)
	}

	key := r.Keyer.RoutineKey(opts.RoutineKeyOpts())
	if !opts.Refresh {
		if entry, ok := r.lookup(ctx, key); ok {
			r.Logger.Debug("routine from cache", "team_size", opts.Request.TeamSize, "format", opts.Format)
			return &Result{
				Routine:   entry.Routine,
				Artifact:  entry.Artifact,
				Format:    opts.Format,
				CacheInfo: CacheInfo{RenderHit: true},
			}, nil
		}
	}

	result, err := r.run(ctx, opts)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(cachedRoutine{Routine: result.Routine, Artifact: result.Artifact}); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cache.KeyTypeRoutine, len(data))
		}
	}
	return result, nil
}

func (r *Runner) executeAndSave(ctx context.Context, opts Options) (*Result, error) {
	composeStart := time.Now()
	rt, err := r.Compose(ctx, opts.Request)
	if err != nil {
		return nil, err
	}
	composeTime := time.Since(composeStart)

	if err := r.Save(ctx, rt); err != nil {
		return nil, err
	}

	renderStart := time.Now()
	artifact, err := r.Render(ctx, rt, opts.Format)
	if err != nil {
		return nil, err
	}

	return &Result{
		Routine:  rt,
		Artifact: artifact,
		Format:   opts.Format,
		Saved:    true,
		Stats:    Stats{ComposeTime: composeTime, RenderTime: time.Since(renderStart)},
	}, nil
}

func (r *Runner) run(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{Format: opts.Format}

	composeStart := time.Now()
	rt, err := r.Compose(ctx, opts.Request)
	if err != nil {
		return nil, err
	}
	result.Routine = rt
	result.Stats.ComposeTime = time.Since(composeStart)

	renderStart := time.Now()
	artifact, err := r.Render(ctx, rt, opts.Format)
	if err != nil {
		return nil, err
	}
	result.Artifact = artifact
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Debug("composed routine",
		"team_size", rt.Request.TeamSize,
		"sections", len(rt.Sections),
		"difficulty", rt.Difficulty,
		"format", opts.Format,
		"duration", result.Stats.ComposeTime+result.Stats.RenderTime)
	return result, nil
}

func (r *Runner) lookup(ctx context.Context, key string) (*cachedRoutine, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeRoutine)
		return nil, false
	}

	var entry cachedRoutine
	if err := json.Unmarshal(data, &entry); err != nil || entry.Routine == nil {
		// Unreadable entry - recompute
		observability.Cache().OnCacheMiss(ctx, cache.KeyTypeRoutine)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, cache.KeyTypeRoutine)
	return &entry, true
}

// Compose builds a routine, reporting to the pipeline hooks.
func (r *Runner) Compose(ctx context.Context, req routine.Request) (*routine.Routine, error) {
	hooks := observability.Pipeline()
	hooks.OnComposeStart(ctx, req.TeamSize, len(req.Sections))
	start := time.Now()

	rt, err := routine.Compose(req)

	difficulty := 0
	if rt != nil {
		difficulty = rt.Difficulty
	}
	hooks.OnComposeComplete(ctx, difficulty, time.Since(start), err)
	return rt, err
}

// Render produces rt in format, reporting to the pipeline hooks.
func (r *Runner) Render(ctx context.Context, rt *routine.Routine, format string) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	data, err := render.Render(rt, format)

	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	return data, err
}

// Formation lays out teamSize athletes in category c, with caching.
// The team size is checked against the routine limits; the category is
// not, so unknown categories fall back to block like the layout engine.
func (r *Runner) Formation(ctx context.Context, teamSize int, c formation.Category) (formation.Diagram, bool, error) {
	if err := errors.ValidateRange(errors.ErrCodeInvalidTeamSize, "team size",
		teamSize, routine.MinTeamSize, routine.MaxTeamSize); err != nil {
		return formation.Diagram{}, false, err
	}

	key := r.Keyer.FormationKey(cache.FormationKeyOpts{Category: c.String(), TeamSize: teamSize})
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		var d formation.Diagram
		if err := json.Unmarshal(data, &d); err == nil {
			observability.Cache().OnCacheHit(ctx, cache.KeyTypeFormation)
			return d, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, cache.KeyTypeFormation)

	d := formation.Render(teamSize, c)
	if data, err := json.Marshal(d); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err == nil {
			observability.Cache().OnCacheSet(ctx, cache.KeyTypeFormation, len(data))
		}
	}
	return d, false, nil
}

// =============================================================================
// Routine Library
// =============================================================================

// Save assigns rt an ID and creation time when missing and stores it.
func (r *Runner) Save(ctx context.Context, rt *routine.Routine) error {
	if rt.ID == "" {
		rt.ID = r.newID()
	}
	if rt.CreatedAt.IsZero() {
		rt.CreatedAt = r.now().UTC()
	}
	if err := r.Store.Save(ctx, rt); err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "save routine %s", rt.ID)
	}
	r.Logger.Debug("saved routine", "id", rt.ID)
	return nil
}

// Load returns the saved routine with the given ID.
func (r *Runner) Load(ctx context.Context, id string) (*routine.Routine, error) {
	if err := errors.ValidateRoutineID(id); err != nil {
		return nil, err
	}
	rt, err := r.Store.Get(ctx, id)
	if err != nil {
		return nil, storeError(err, id)
	}
	return rt, nil
}

// List returns up to limit saved routines, newest first.
func (r *Runner) List(ctx context.Context, limit int) ([]*routine.Routine, error) {
	rts, err := r.Store.List(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "list routines")
	}
	return rts, nil
}

// Delete removes the saved routine with the given ID.
func (r *Runner) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateRoutineID(id); err != nil {
		return err
	}
	if err := r.Store.Delete(ctx, id); err != nil {
		return storeError(err, id)
	}
	return nil
}

func storeError(err error, id string) error {
	if stderrors.Is(err, store.ErrNotFound) {
		return errors.Wrap(errors.ErrCodeNotFound, err, "routine %s not found", id)
	}
	return errors.Wrap(errors.ErrCodeUnavailable, err, "routine store")
}

// Close releases resources held by the runner.
func (r *Runner) Close(ctx context.Context) error {
	return stderrors.Join(r.Cache.Close(), r.Store.Close(ctx))
}
