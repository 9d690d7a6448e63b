package cli

import (
	"fmt"
	"net/url"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cheertower/pkg/config"
)

const secretMask = "redacted"

// configCommand creates the config inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration as TOML (secrets masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(masked(*cfg))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	})
	return cmd
}

// masked returns cfg with passwords replaced by secretMask.
func masked(cfg config.Config) config.Config {
	if cfg.Cache.Redis.Password != "" {
		cfg.Cache.Redis.Password = secretMask
	}
	if u, err := url.Parse(cfg.Store.Mongo.URI); err == nil && u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), secretMask)
			cfg.Store.Mongo.URI = u.String()
		}
	}
	return cfg
}
