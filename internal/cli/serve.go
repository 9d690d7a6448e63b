package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cheertower/internal/server"
	"github.com/matzehuels/cheertower/pkg/config"
	"github.com/matzehuels/cheertower/pkg/observability"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr, cacheBackend, storeBackend string
		metrics                          bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the routine builder web page and JSON API",
		Long: `Run the HTTP server.

GET / serves the routine builder form. The JSON API lives under /api:
routines, formations and time labels. The server stops gracefully on
SIGINT or SIGTERM.`,
		Example: `  cheertower serve --addr :9000
  CHEERTOWER_REDIS_ADDR=localhost:6379 cheertower serve --cache redis`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}

			// Flags win over file and environment.
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if cacheBackend != "" {
				cfg.Cache.Backend = cacheBackend
			}
			if storeBackend != "" {
				cfg.Store.Backend = storeBackend
			}
			if metrics {
				cfg.Server.Metrics = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer closeRunner(ctx, runner)

			srv := server.New(runner, cfg.Server, c.Logger)
			if cfg.Server.Metrics {
				m := observability.NewMetricsHooks(config.AppName)
				c.AddHooks(m)
				srv.EnableMetrics(m.Handler())
			}

			printInfo("Serving on %s", StyleHighlight.Render(cfg.Server.Addr))
			printKeyValue("cache", cfg.Cache.Backend)
			printKeyValue("store", cfg.Store.Backend)
			if cfg.Server.Metrics {
				printKeyValue("metrics", "/metrics")
			}
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&cacheBackend, "cache", "", "cache backend (none, file, redis)")
	cmd.Flags().StringVar(&storeBackend, "store", "", "routine store (memory, mongo)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "expose Prometheus metrics on /metrics")
	_ = cmd.RegisterFlagCompletionFunc("cache", fixedCompletion([]string{"none", "file", "redis"}))
	_ = cmd.RegisterFlagCompletionFunc("store", fixedCompletion([]string{"memory", "mongo"}))
	return cmd
}
