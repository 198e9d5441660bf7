package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "test [provider-key]",
		Short: "Health-check one provider, or all with --all",
		Long: `Send the canned health-check prompt to a provider once, with no retry or
fallback. Health checks are not written to the attempt log. Exits 1 when a check fails.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, rootOpts, args, all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "test every configured provider")

	return cmd
}

func runTest(cmd *cobra.Command, rootOpts *RootOptions, args []string, all bool) error {
	ctx := cmd.Context()
	a, err := rootOpts.loadApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
	providers := a.registry.Providers()

	var results []types.TestResult
	if all {
		results = a.dispatcher.TestAll(ctx, providers)
	} else {
		key := args[0]
		if _, ok := a.registry.Get(key); !ok {
			return out.Failure(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("provider %q not found", key), nil, nil)
		}
		results = []types.TestResult{a.dispatcher.TestProvider(ctx, key, providers)}
	}

	var data interface{} = results
	if !all {
		data = results[0]
	}
	text := func(w io.Writer) {
		for _, r := range results {
			renderTest(w, r)
		}
	}

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
	}
	if failed > 0 {
		return out.Failure(ExitFailure, ErrCodeTestFailed, fmt.Sprintf("%d of %d provider(s) failed the health check", failed, len(results)), data, text)
	}
	return out.Success(data, text)
}
