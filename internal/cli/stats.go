package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show usage statistics from the attempt log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return NewExitError(ExitCommandError, "--days must not be negative")
			}

			a, err := rootOpts.loadApp(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.dispatcher.Stats(cmd.Context(), days)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to compute stats", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Success(stats, func(w io.Writer) { renderStats(w, stats) })
		},
	}

	cmd.Flags().IntVar(&days, "days", types.DefaultStatsWindowDays, "window size in days")

	return cmd
}
