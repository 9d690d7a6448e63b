package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cheertower/pkg/errors"
	"github.com/matzehuels/cheertower/pkg/render"
	"github.com/matzehuels/cheertower/pkg/timing"
)

// timeLabel is the JSON shape of one time label.
type timeLabel struct {
	Seconds int    `json:"seconds"`
	Counts  int    `json:"counts"`
	Label   string `json:"label"`
}

// timeCommand creates the time command.
func (c *CLI) timeCommand() *cobra.Command {
	var (
		split  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "time <seconds>...",
		Short: "Print time labels in seconds and counts of eight",
		Long: `Print the "<sec> sec | <n>×8" label for each length in seconds.

One count of eight is taken as 15 seconds, and every label shows at least
one. With --split the first length is divided across that many sections
the way compose divides a routine.`,
		Example: `  cheertower time 30 45 90
  cheertower time 120 --split 6`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seconds := make([]int, len(args))
			for i, arg := range args {
				n, err := strconv.Atoi(arg)
				if err != nil || n < 0 {
					return errors.New(errors.ErrCodeInvalidInput, "seconds must be a non-negative whole number, got %q", arg)
				}
				seconds[i] = n
			}
			if split > 0 {
				if len(seconds) > 1 {
					return errors.New(errors.ErrCodeInvalidInput, "--split takes exactly one length, got %d", len(seconds))
				}
				seconds = timing.Split(seconds[0], split)
			}
			return writeTimeLabels(cmd, seconds, format)
		},
	}

	cmd.Flags().IntVar(&split, "split", 0, "divide the length across this many sections")
	cmd.Flags().StringVarP(&format, "format", "f", render.FormatText, "output format (text, json)")
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletion([]string{render.FormatText, render.FormatJSON}))
	return cmd
}

func writeTimeLabels(cmd *cobra.Command, seconds []int, format string) error {
	out := cmd.OutOrStdout()
	switch format {
	case render.FormatText:
		for _, s := range seconds {
			if _, err := fmt.Fprintln(out, timing.FormatTime(s)); err != nil {
				return err
			}
		}
		return nil
	case render.FormatJSON:
		labels := make([]timeLabel, len(seconds))
		for i, s := range seconds {
			labels[i] = timeLabel{Seconds: s, Counts: timing.CountsOfEight(s), Label: timing.FormatTime(s)}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(labels)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: text, json)", format)
}
