package cli

import (
	"encoding/json"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cheertower/pkg/errors"
	"github.com/matzehuels/cheertower/pkg/formation"
	"github.com/matzehuels/cheertower/pkg/render"
)

// formationCommand creates the formation command.
func (c *CLI) formationCommand() *cobra.Command {
	var (
		teamSize    int
		format      string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "formation [stunts|pyramid|block|wide]",
		Short: "Draw one formation for a team size",
		Long: `Draw a formation diagram for a team size.

Unknown categories fall back to block. Legacy routine type codes 1 and 2
draw block, 3 draws wide. With --interactive the category is picked from a
list with a live preview.`,
		Example: `  cheertower formation stunts -n 14
  cheertower formation pyramid -n 24 --format json
  cheertower formation -i`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: categoryNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			var category formation.Category
			switch {
			case interactive:
				picked, ok, err := pickCategory(cmd, teamSize)
				if err != nil || !ok {
					return err
				}
				category, teamSize = picked.category, picked.teamSize
			case len(args) == 1:
				category = formation.ParseCategory(args[0])
				if !formation.IsKnown(args[0]) {
					printWarning("unknown formation %q, drawing %s", args[0], category)
				}
			default:
				return fmt.Errorf("formation category required (or use --interactive)")
			}
			return c.runFormation(cmd, category, teamSize, format)
		},
	}

	cmd.Flags().IntVarP(&teamSize, "team-size", "n", 12, "number of athletes")
	cmd.Flags().StringVarP(&format, "format", "f", render.FormatText, "output format (text, json)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick the category interactively")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletion([]string{render.FormatText, render.FormatJSON}))

	cmd.AddCommand(c.formationListCommand())
	return cmd
}

func (c *CLI) runFormation(cmd *cobra.Command, category formation.Category, teamSize int, format string) error {
	if format != render.FormatText && format != render.FormatJSON {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: text, json)", format)
	}

	ctx := cmd.Context()
	cfg, err := c.config()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer closeRunner(ctx, runner)

	d, hit, err := runner.Formation(ctx, teamSize, category)
	if err != nil {
		return err
	}
	loggerFromContext(ctx).Debug("formation", "category", d.Category, "team_size", teamSize, "cached", hit)

	if format == render.FormatJSON {
		data, err := json.MarshalIndent(render.NewFormationDoc(d), "", "  ")
		if err != nil {
			return err
		}
		return writeArtifact(cmd, "", data)
	}
	if err := writeArtifact(cmd, "", []byte(d.String())); err != nil {
		return err
	}
	if note := diagramNote(d); note != "" {
		printWarning("%s", note)
	}
	return nil
}

// formationListCommand creates the "formation list" subcommand.
func (c *CLI) formationListCommand() *cobra.Command {
	var teamSize int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List formation categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), categoryTable(teamSize))
			return err
		},
	}
	cmd.Flags().IntVarP(&teamSize, "team-size", "n", 12, "team size used for the row and marker counts")
	return cmd
}

type categoryPick struct {
	category formation.Category
	teamSize int
}

// pickCategory runs the interactive picker. ok is false when the user quit
// without choosing.
func pickCategory(cmd *cobra.Command, teamSize int) (categoryPick, bool, error) {
	if !isTerminal(cmd.InOrStdin()) {
		return categoryPick{}, false, fmt.Errorf("--interactive needs a terminal on stdin")
	}
	model := NewCategoryListModel(teamSize)
	p := tea.NewProgram(model,
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(statusOut),
	)
	final, err := p.Run()
	if err != nil {
		return categoryPick{}, false, fmt.Errorf("formation picker: %w", err)
	}
	m, _ := final.(CategoryListModel)
	if m.Selected == nil {
		printInfo("No formation selected")
		return categoryPick{}, false, nil
	}
	return categoryPick{category: *m.Selected, teamSize: m.TeamSize}, true, nil
}

func categoryNames() []string {
	cats := formation.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.String()
	}
	return names
}
