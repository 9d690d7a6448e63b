package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cheertower/pkg/buildinfo"
	"github.com/matzehuels/cheertower/pkg/cache"
	"github.com/matzehuels/cheertower/pkg/config"
	"github.com/matzehuels/cheertower/pkg/observability"
	"github.com/matzehuels/cheertower/pkg/pipeline"
	"github.com/matzehuels/cheertower/pkg/store"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag; empty means the XDG default.
	configPath string
	cfg        *config.Config

	// levelSet is true once the level came from a flag; [log] level is
	// then ignored.
	levelSet bool

	hooks observability.Fanout
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.levelSet = true
}

// AddHooks registers h alongside any hooks added before it.
func (c *CLI) AddHooks(h observability.Hooks) {
	c.hooks = append(c.hooks, h)
	observability.Register(c.hooks)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "cheertower",
		Short: "Cheertower builds cheerleading routines with formation diagrams",
		Long: `Cheertower composes timed cheerleading routines for a squad and draws
each section's formation as a text diagram: stunt pods, pyramids, block
and wide rows.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/cheertower/config.toml)")

	root.AddCommand(c.composeCommand())
	root.AddCommand(c.formationCommand())
	root.AddCommand(c.timeCommand())
	root.AddCommand(c.libraryCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if !c.levelSet {
		if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
			c.Logger.SetLevel(level)
		}
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner from the configuration.
// noCache replaces the configured cache with a NullCache.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config, noCache bool) (*pipeline.Runner, error) {
	cacheOpts := cfg.Cache.Options()
	if noCache {
		cacheOpts.Backend = cache.BackendNone
	}

	ch, err := connectTo(c, ctx, "redis", cacheOpts.Backend == cache.BackendRedis, func() (cache.Cache, error) {
		return cache.New(ctx, cacheOpts)
	})
	if err != nil {
		return nil, err
	}

	st, err := c.openStore(ctx, cfg.Store)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}

	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}

	runner := pipeline.NewRunner(ch, keyer, st, c.Logger)
	if cfg.Cache.TTL.Duration > 0 {
		runner.TTL = cfg.Cache.TTL.Duration
	}
	return runner, nil
}

func (c *CLI) openStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	if sc.Backend != config.StoreMongo {
		return store.NewMemoryStore(), nil
	}
	return connectTo(c, ctx, "mongodb", true, func() (store.Store, error) {
		s, err := store.NewMongoStore(ctx, sc.Mongo)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

// connectTo runs open behind a spinner when remote is set.
func connectTo[T any](c *CLI, ctx context.Context, name string, remote bool, open func() (T, error)) (T, error) {
	if !remote {
		return open()
	}
	spinner := newSpinnerWithContext(ctx, "Connecting to "+name+"...")
	spinner.Start()
	v, err := open()
	if err != nil {
		spinner.StopWithError("Could not connect to " + name)
		return v, err
	}
	spinner.Stop()
	c.Logger.Debug("connected", "backend", name)
	return v, nil
}
