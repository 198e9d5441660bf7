package cli

import (
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/cecil-the-coder/ai-contingency/pkg/types"
)

// Error codes printed by the CLI.
const (
	ErrCodeInvalidRequest = "E001"
	ErrCodeNoProviders    = "E002"
	ErrCodeExhausted      = "E003"
	ErrCodeCancelled      = "E004"
	ErrCodeNotFound       = "E005"
	ErrCodeTestFailed     = "E006"
)

type dispatchOptions struct {
	types.Request
}

// NewDispatchCommand creates the dispatch command.
func NewDispatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &dispatchOptions{}

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Send one request through the provider chain",
		Long: `Send one request through the configured providers in priority order.

Each provider is retried with linear backoff before falling back to the next one.
Every attempt is written to the attempt log. Exits 1 when all providers fail.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDispatch(cmd, rootOpts, opts.Request)
		},
	}

	cmd.Flags().StringVarP(&opts.Prompt, "prompt", "p", "", "prompt text (required)")
	cmd.Flags().StringVar(&opts.PreferredProviderKey, "prefer", "", "provider key to try first")
	cmd.Flags().IntVar(&opts.MaxTokens, "max-tokens", 0, "maximum tokens to generate")
	cmd.Flags().Float64Var(&opts.Temperature, "temperature", 0, "sampling temperature (0-2)")
	cmd.Flags().StringVar(&opts.Context, "context", "", "system context for the request")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

func runDispatch(cmd *cobra.Command, rootOpts *RootOptions, req types.Request) error {
	ctx := cmd.Context()
	a, err := rootOpts.loadApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

	result, err := a.dispatcher.Dispatch(ctx, req, a.registry.Providers())
	switch {
	case errors.Is(err, types.ErrInvalidRequest):
		return out.Failure(ExitCommandError, ErrCodeInvalidRequest, err.Error(), nil, nil)
	case errors.Is(err, types.ErrNoProvidersConfigured):
		return out.Failure(ExitCommandError, ErrCodeNoProviders, err.Error(), nil, nil)
	case errors.Is(err, types.ErrDispatchCancelled):
		return out.Failure(ExitFailure, ErrCodeCancelled, err.Error(), result, func(w io.Writer) { renderDispatch(w, result) })
	case err != nil:
		return err
	}

	if !result.Success {
		return out.Failure(ExitFailure, ErrCodeExhausted, result.Error, result, func(w io.Writer) { renderDispatch(w, result) })
	}
	return out.Success(result, func(w io.Writer) { renderDispatch(w, result) })
}
