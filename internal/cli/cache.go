package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cheertower/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached routines and formations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			opts := cfg.Cache.Options()

			switch opts.Backend {
			case cache.BackendFile:
				fc, err := cache.NewFileCache(opts.Dir)
				if err != nil {
					return fmt.Errorf("open cache: %w", err)
				}
				count, err := fc.Clear()
				if err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				printSuccess("Cleared %d cached entries", count)
				printDetail("Directory: %s", fc.Dir())

			case cache.BackendRedis:
				ctx := cmd.Context()
				rc, err := connectTo(c, ctx, "redis", true, func() (*cache.RedisCache, error) {
					return cache.NewRedisCache(ctx, opts.Redis)
				})
				if err != nil {
					return err
				}
				defer rc.Close()
				count, err := rc.Clear(ctx, cfg.Cache.Prefix)
				if err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				printSuccess("Cleared %d cached entries", count)
				printDetail("Redis: %s (prefix %q)", opts.Redis.Addr, cfg.Cache.Prefix)

			default:
				printInfo("Cache is disabled")
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cfg.Cache.Options().Dir)
			return err
		},
	}
}
