package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cheertower/pkg/config"
	"github.com/matzehuels/cheertower/pkg/pipeline"
	"github.com/matzehuels/cheertower/pkg/render"
	"github.com/matzehuels/cheertower/pkg/routine"
)

// composeOpts holds the flags of the compose command.
type composeOpts struct {
	req     routine.Request
	format  string
	output  string
	noCache bool
	refresh bool
	save    bool
}

// composeCommand creates the compose command.
func (c *CLI) composeCommand() *cobra.Command {
	opts := composeOpts{
		req: routine.Request{
			Level:         routine.LevelBeginner,
			TeamSize:      12,
			LengthMinutes: 2,
			Focus:         routine.FocusStunts,
		},
	}

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Compose a timed routine with formation diagrams",
		Long: `Compose a routine for a squad and print it.

The routine length is split across the chosen sections. Each section gets a
"<sec> sec | <n>×8" time label and a formation diagram sized to the team.`,
		Example: `  cheertower compose --level Intermediate --team-size 16 --length 3 --focus Tumbling
  cheertower compose --section opening --section pyramid --format json
  cheertower compose --save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompose(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.req.Level, "level", opts.req.Level, "skill level (Beginner, Intermediate, Advanced)")
	f.IntVarP(&opts.req.TeamSize, "team-size", "n", opts.req.TeamSize, fmt.Sprintf("number of athletes (%d-%d)", routine.MinTeamSize, routine.MaxTeamSize))
	f.IntVar(&opts.req.LengthMinutes, "length", opts.req.LengthMinutes, fmt.Sprintf("routine length in minutes (%d-%d)", routine.MinLength, routine.MaxLength))
	f.StringVar(&opts.req.Focus, "focus", opts.req.Focus, "focus area (Tumbling, Stunts, Jumps, Dance, Motions)")
	f.StringSliceVar(&opts.req.Sections, "section", nil, "sections to include, in any order (default all)")
	f.StringVarP(&opts.format, "format", "f", "", "output format: text, json, html, styled (default styled on a terminal, else text)")
	f.StringVarP(&opts.output, "output", "o", "", "write to file instead of stdout")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")
	f.BoolVar(&opts.refresh, "refresh", false, "recompose even when cached")
	f.BoolVar(&opts.save, "save", false, "save the routine to the library")

	_ = cmd.RegisterFlagCompletionFunc("level", fixedCompletion(routine.Levels()))
	_ = cmd.RegisterFlagCompletionFunc("focus", fixedCompletion(routine.FocusAreas()))
	_ = cmd.RegisterFlagCompletionFunc("section", fixedCompletion(routine.SectionNames()))
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletion([]string{
		render.FormatText, render.FormatJSON, render.FormatHTML, render.FormatStyled,
	}))

	return cmd
}

func (c *CLI) runCompose(cmd *cobra.Command, opts composeOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.config()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer closeRunner(ctx, runner)

	prog := newProgress(logger)
	result, err := runner.Execute(ctx, pipeline.Options{
		Request: opts.req,
		Format:  outputFormat(opts.format, opts.output, cmd.OutOrStdout()),
		Refresh: opts.refresh,
		Save:    opts.save,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	prog.done("Composed routine")

	if err := writeArtifact(cmd, opts.output, result.Artifact); err != nil {
		return err
	}

	printStats(len(result.Routine.Sections), result.Routine.Difficulty, result.CacheInfo.RenderHit)
	if result.Saved {
		printSuccess("Saved routine %s", StyleHighlight.Render(result.Routine.ID))
		if cfg.Store.Backend == config.StoreMemory {
			printWarning("store backend is memory; the routine is gone when this process exits")
		} else {
			printNextStep("Show it again", "cheertower library show "+result.Routine.ID)
		}
	}
	return nil
}

// writeArtifact writes data to path, or to the command's stdout when path
// is empty.
func writeArtifact(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		out := cmd.OutOrStdout()
		if _, err := out.Write(data); err != nil {
			return err
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			_, err := fmt.Fprintln(out)
			return err
		}
		return nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}

func closeRunner(ctx context.Context, runner *pipeline.Runner) {
	if err := runner.Close(context.WithoutCancel(ctx)); err != nil {
		loggerFromContext(ctx).Warn("close backends", "err", err)
	}
}

// fixedCompletion completes a flag from a fixed list of values.
func fixedCompletion(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}
