package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cheertower/pkg/config"
	"github.com/matzehuels/cheertower/pkg/pipeline"
)

// libraryCommand creates the saved routine library command.
func (c *CLI) libraryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib"},
		Short:   "Browse saved routines",
		Long: `Browse routines saved with "compose --save".

The library lives in the configured store. With the default memory store
it is empty in every new process; set [store] backend = "mongo" to keep
routines between runs.`,
	}

	cmd.AddCommand(c.libraryListCommand())
	cmd.AddCommand(c.libraryShowCommand())
	cmd.AddCommand(c.libraryDeleteCommand())
	return cmd
}

// withLibrary opens the runner for a library subcommand and warns when the
// store cannot hold anything between runs.
func (c *CLI) withLibrary(cmd *cobra.Command, fn func(*pipeline.Runner, *config.Config) error) error {
	ctx := cmd.Context()
	cfg, err := c.config()
	if err != nil {
		return err
	}
	if cfg.Store.Backend == config.StoreMemory {
		printWarning("store backend is memory; the library is empty")
	}
	runner, err := c.newRunner(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer closeRunner(ctx, runner)
	return fn(runner, cfg)
}

func (c *CLI) libraryListCommand() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved routines, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLibrary(cmd, func(runner *pipeline.Runner, cfg *config.Config) error {
				if limit <= 0 {
					limit = cfg.Store.ListLimit
				}
				routines, err := runner.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if asJSON {
					data, err := json.MarshalIndent(routines, "", "  ")
					if err != nil {
						return err
					}
					return writeArtifact(cmd, "", data)
				}
				if len(routines) == 0 {
					printInfo("No saved routines")
					return nil
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), routineTable(routines, time.Now()))
				return err
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of routines (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func (c *CLI) libraryShowCommand() *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved routine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLibrary(cmd, func(runner *pipeline.Runner, _ *config.Config) error {
				ctx := cmd.Context()
				rt, err := runner.Load(ctx, args[0])
				if err != nil {
					return err
				}
				data, err := runner.Render(ctx, rt, outputFormat(format, output, cmd.OutOrStdout()))
				if err != nil {
					return err
				}
				return writeArtifact(cmd, output, data)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: text, json, html, styled (default styled on a terminal, else text)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func (c *CLI) libraryDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved routine",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withLibrary(cmd, func(runner *pipeline.Runner, _ *config.Config) error {
				if err := runner.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted routine %s", args[0])
				return nil
			})
		},
	}
}
